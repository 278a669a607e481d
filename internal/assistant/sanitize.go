package assistant

// sensitiveKeys never reach a prompt, at any nesting depth
var sensitiveKeys = map[string]struct{}{
	"cpf":             {},
	"rg":              {},
	"siape":           {},
	"dados_bancarios": {},
	"banco":           {},
	"agencia":         {},
	"conta":           {},
	"nome_mae":        {},
	"endereco":        {},
	"telefone":        {},
	"email":           {},
}

// Sanitize returns a copy of v without any sensitive key. The input is not
// modified.
func Sanitize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			if _, drop := sensitiveKeys[k]; drop {
				continue
			}
			out[k] = Sanitize(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = Sanitize(val)
		}
		return out
	default:
		return v
	}
}
