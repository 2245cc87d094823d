package classifier

import "fmt"

// Label is the closed set of intents a message can be classified into.
type Label int

const (
	OutOfDomain Label = iota
	InDomain
	PromptInjection
	Contact
)

var labelNames = [...]string{
	OutOfDomain:     "OUT_OF_DOMAIN",
	InDomain:        "IN_DOMAIN",
	PromptInjection: "PROMPT_INJECTION",
	Contact:         "CONTACT",
}

func (l Label) String() string {
	if l < 0 || int(l) >= len(labelNames) {
		return fmt.Sprintf("Label(%d)", int(l))
	}
	return labelNames[l]
}

// ParseLabel accepts exactly the four wire names.
func ParseLabel(s string) (Label, bool) {
	for i, name := range labelNames {
		if name == s {
			return Label(i), true
		}
	}
	return OutOfDomain, false
}

func (l Label) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}
