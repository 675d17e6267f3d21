package utils

// MakeMap builds a string map from alternating keys and values. A trailing
// key without a value maps to the empty string.
func MakeMap(kv ...string) map[string]string {
	m := make(map[string]string, (len(kv)+1)/2)
	for i := 0; i < len(kv); i += 2 {
		v := ""
		if i+1 < len(kv) {
			v = kv[i+1]
		}
		m[kv[i]] = v
	}
	return m
}
