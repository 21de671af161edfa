package engine

// CommandResponse is the envelope returned to admin clients.
type CommandResponse struct {
	ResultCount int
	Result      interface{}
}
