package domain

// Command is a workflow request handled by the engine's single entry
// point. The set of commands is closed to this package.
type Command interface {
	commandName() string
}

type ApproveApplication struct {
	ApplicationID int32
	ReviewerID    int32
}

type RejectApplication struct {
	ApplicationID int32
	ReviewerID    int32
	Reason        string
}

type AdviserDecideDocument struct {
	DocumentID int32
	AdviserID  int32
	Decision   Decision
	Reason     string
}

type OsasDecideDocument struct {
	DocumentID int32
	ReviewerID int32
	Decision   Decision
	Reason     string
}

type ResubmitDocument struct {
	DocumentID  int32
	SubmittedBy int32
	File        Upload
}

type AddOfficer struct {
	OwnerType     OwnerType
	OwnerID       int32
	StudentNumber string
	FullName      string
	Position      string
	Email         string
	Picture       *Upload
}

func (ApproveApplication) commandName() string    { return "approve_application" }
func (RejectApplication) commandName() string     { return "reject_application" }
func (AdviserDecideDocument) commandName() string { return "adviser_decide_document" }
func (OsasDecideDocument) commandName() string    { return "osas_decide_document" }
func (ResubmitDocument) commandName() string      { return "resubmit_document" }
func (AddOfficer) commandName() string            { return "add_officer" }

// CommandName returns the stable name of a command for logging.
func CommandName(c Command) string {
	if c == nil {
		return ""
	}
	return c.commandName()
}
