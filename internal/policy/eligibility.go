package policy

import (
	"TipSentinel/internal/chain"
	"TipSentinel/internal/model"
)

// ReplyLister is the one external lookup the eligibility filter needs:
// the direct replies of a post, to detect a prior bot answer.
type ReplyLister interface {
	Replies(author, permlink string) ([]chain.Reply, error)
}

// Filter applies the structural and policy rejection rules to a
// candidate event. Checks run in a fixed order; the first hit wins and
// short-circuits the rest.
type Filter struct {
	BotAccount string
	Blocked    func(account string) bool
	Replies    ReplyLister
	checks     []check
}

type check struct {
	reason model.RejectReason
	hit    func(e *model.CommentEvent) (bool, error)
}

func NewFilter(botAccount string, blocked func(string) bool, replies ReplyLister) *Filter {
	f := &Filter{BotAccount: botAccount, Blocked: blocked, Replies: replies}
	f.checks = []check{
		{model.RejectMissingRecipient, f.missingRecipient},
		{model.RejectSelfTarget, f.selfTarget},
		{model.RejectTargetsBot, f.targetsBot},
		{model.RejectAlreadyAnswered, f.alreadyAnswered},
		{model.RejectBlockListed, f.blockListed},
	}
	return f
}

// Evaluate returns the first matching rejection reason, or RejectNone
// when the event is eligible. A chain.ErrNotFound from the reply scan
// surfaces as an error for the engine's skip path.
func (f *Filter) Evaluate(e *model.CommentEvent) (model.RejectReason, error) {
	for _, c := range f.checks {
		hit, err := c.hit(e)
		if err != nil {
			return model.RejectNone, err
		}
		if hit {
			return c.reason, nil
		}
	}
	return model.RejectNone, nil
}

func (f *Filter) missingRecipient(e *model.CommentEvent) (bool, error) {
	return e.ParentAuthor == "", nil
}

func (f *Filter) selfTarget(e *model.CommentEvent) (bool, error) {
	return e.Author == e.ParentAuthor, nil
}

func (f *Filter) targetsBot(e *model.CommentEvent) (bool, error) {
	return e.ParentAuthor == f.BotAccount, nil
}

// alreadyAnswered scans all direct replies of the command comment, not
// just the most recent one.
func (f *Filter) alreadyAnswered(e *model.CommentEvent) (bool, error) {
	replies, err := f.Replies.Replies(e.Author, e.Permlink)
	if err != nil {
		return false, err
	}
	for _, r := range replies {
		if r.Author == f.BotAccount {
			return true, nil
		}
	}
	return false, nil
}

func (f *Filter) blockListed(e *model.CommentEvent) (bool, error) {
	return f.Blocked(e.Author) || f.Blocked(e.ParentAuthor), nil
}
