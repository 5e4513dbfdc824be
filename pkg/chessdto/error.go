package chessdto

// DomainError carries a presentable failure. Code is a catalog key suffix
// such as "no_game" or "busy".
type DomainError struct {
	Code      string
	Message   string
	Retryable bool
}

func (e DomainError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Code != "" {
		return e.Code
	}
	return "atomic chess error"
}

// Is matches DomainErrors by code so callers can use errors.Is with a template value.
func (e DomainError) Is(target error) bool {
	t, ok := target.(DomainError)
	return ok && t.Code != "" && t.Code == e.Code
}
