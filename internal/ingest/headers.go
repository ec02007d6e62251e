package ingest

import "strings"

// Synonyms lists, per field, the tokens a header must contain to bind to it.
type Synonyms map[Field][]string

// DefaultSynonyms are the English and Arabic tokens recognised out of the box.
func DefaultSynonyms() Synonyms {
	return Synonyms{
		FieldDate:    {"date", "تاريخ"},
		FieldBranch:  {"branch", "فرع"},
		FieldChannel: {"channel", "قناة"},
		FieldSales:   {"sales", "مبيعات", "value", "قيمة"},
		FieldOrders:  {"order", "طلب", "عدد"},
		FieldTarget:  {"target", "هدف", "مستهدف"},
	}
}

// WithOverrides returns a copy of s where every field present in overrides
// uses the override tokens instead.
func (s Synonyms) WithOverrides(overrides map[string][]string) Synonyms {
	out := make(Synonyms, len(s))
	for f, tokens := range s {
		out[f] = tokens
	}
	for name, tokens := range overrides {
		if len(tokens) > 0 {
			out[Field(name)] = tokens
		}
	}
	return out
}

// ResolveHeaders binds each field to the leftmost header whose normalized
// text contains one of the field's normalized tokens. Fields are resolved
// independently, so one header may serve more than one field.
//
// When date, branch or channel stays unbound the file is unusable and a
// *MissingColumnError is returned together with the partial map.
func ResolveHeaders(headers []string, synonyms Synonyms) (FieldMap, error) {
	normalized := make([]string, len(headers))
	for i, h := range headers {
		normalized[i] = NormalizeText(h)
	}

	fm := make(FieldMap, len(Fields))
	for _, field := range Fields {
		tokens := normalizeTokens(synonyms[field])
		for i, nh := range normalized {
			if nh != "" && containsAny(nh, tokens) {
				fm[field] = headers[i]
				break
			}
		}
	}

	var missing []Field
	for _, field := range MandatoryFields {
		if _, ok := fm[field]; !ok {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		return fm, &MissingColumnError{Fields: missing}
	}

	return fm, nil
}

func normalizeTokens(tokens []string) []string {
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if nt := NormalizeText(t); nt != "" {
			out = append(out, nt)
		}
	}
	return out
}

func containsAny(text string, tokens []string) bool {
	for _, t := range tokens {
		if strings.Contains(text, t) {
			return true
		}
	}
	return false
}
