package util

// Envelope is the ad-hoc JSON object handlers reply with.
type Envelope map[string]any

func Error(message string) Envelope {
	return Envelope{"message": message}
}

func Data(key string, value any) Envelope {
	return Envelope{key: value}
}
