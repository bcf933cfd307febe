package activity

const (
	DefaultListLimit = 50
	MaxListLimit     = 200
)

// ListActivityOptions filters the activity log. An empty Session matches
// every session.
type ListActivityOptions struct {
	Session string
	Limit   int
}

func (o ListActivityOptions) normalized() ListActivityOptions {
	if o.Limit <= 0 {
		o.Limit = DefaultListLimit
	}
	if o.Limit > MaxListLimit {
		o.Limit = MaxListLimit
	}
	return o
}
