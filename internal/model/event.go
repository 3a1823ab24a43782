package model

// CommentEvent is a single comment operation pulled from the chain feed.
type CommentEvent struct {
	BlockNum     int64
	Author       string
	ParentAuthor string
	Permlink     string
	Body         string
}

// Identifier returns the @author/permlink reference for this comment.
func (e *CommentEvent) Identifier() string {
	return "@" + e.Author + "/" + e.Permlink
}
