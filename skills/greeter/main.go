package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/extism/go-pdk"
)

type request struct {
	Intent string         `json:"intent"`
	Slots  map[string]any `json:"slots"`
}

type reply struct {
	OK          bool   `json:"ok"`
	Message     string `json:"message"`
	DisplayType string `json:"display_type"`
}

//export handle
func handle() int32 {
	var req request
	if err := json.Unmarshal(pdk.Input(), &req); err != nil {
		return fail("invalid input: " + err.Error())
	}

	name := "there"
	if v, ok := req.Slots["name"].(string); ok && v != "" {
		name = v
	}

	var message string
	switch req.Intent {
	case "greet.hello":
		message = fmt.Sprintf("Hello, %s!", title(name))
	case "greet.goodbye":
		message = fmt.Sprintf("Goodbye, %s. See you soon!", title(name))
	default:
		return fail("unknown intent: " + req.Intent)
	}

	out, _ := json.Marshal(reply{OK: true, Message: message, DisplayType: "none"})
	pdk.Output(out)
	return 0
}

func fail(msg string) int32 {
	out, _ := json.Marshal(reply{OK: false, Message: msg, DisplayType: "error"})
	pdk.Output(out)
	return 1
}

func title(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func main() {}
