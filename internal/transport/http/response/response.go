package response

// Msg is the body of every error and of acknowledgement-only replies.
type Msg struct {
	Message string `json:"message"`
}

// Error builds a message body, falling back to the status text.
func Error(code int, customMsg string) Msg {
	if customMsg != "" {
		return Msg{Message: customMsg}
	}
	if m, ok := CodeMsgMap[code]; ok {
		return Msg{Message: m}
	}
	return Msg{Message: "error"}
}

func Message(msg string) Msg { return Msg{Message: msg} }
