package main

type KnownError struct {
	Reason string
}

func (e *KnownError) Error() string {
	return e.Reason
}

func validate(name string) {
	if name == "" {
		panic(&KnownError{Reason: "empty name"})
	}
}
