package draft

// MergeDocuments merges partial into base field by field and returns a new
// document; neither input is mutated. Nested objects merge recursively, every
// other value (including arrays) replaces the stored one wholesale. A nil
// value in partial clears the field.
func MergeDocuments(base, partial map[string]any) map[string]any {
	merged := make(map[string]any, len(base)+len(partial))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range partial {
		existing, ok := merged[k].(map[string]any)
		if !ok {
			merged[k] = v
			continue
		}
		incoming, ok := v.(map[string]any)
		if !ok {
			merged[k] = v
			continue
		}
		merged[k] = MergeDocuments(existing, incoming)
	}
	return merged
}
