package notify

// Confirmer asks the user a yes/no question before a destructive action.
type Confirmer interface {
	Confirm(prompt string) bool
}

type ConfirmFunc func(prompt string) bool

func (f ConfirmFunc) Confirm(prompt string) bool { return f(prompt) }

// Always confirms without asking; used after a surface has already asked.
var Always = ConfirmFunc(func(string) bool { return true })

// DeletePrompt is the confirmation question for deleting a client.
func DeletePrompt(name string) string {
	return "Are you sure you want to delete " + name + "? This action cannot be undone."
}
