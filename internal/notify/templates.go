package notify

import (
	"fmt"
	"strings"

	"orggov-backend/internal/domain"
)

// Render builds the subject and plain-text body for a notification kind.
func Render(kind domain.NotificationKind, p map[string]string) (Message, error) {
	msg := Message{Kind: kind, Payload: p}
	institution := p[KeyInstitution]
	if institution == "" {
		institution = "Student Affairs"
	}
	signature := fmt.Sprintf("\n\nBest regards,\n%s", institution)

	switch kind {
	case domain.NotificationCredentialsCreated:
		msg.Sensitive = true
		msg.Subject = fmt.Sprintf("Your account for %s", p[KeyEntityName])
		msg.Body = fmt.Sprintf("Hello %s,\n\nAn account was created for you as %s of %s.\n\nUsername: %s\nPassword: %s\n\nPlease change your password after your first login.",
			p[KeyName], roleLabel(p[KeyRole]), p[KeyEntityName], p[KeyUsername], p[KeyPassword]) + signature

	case domain.NotificationApplicationApproved:
		msg.Subject = fmt.Sprintf("Application approved: %s", p[KeyEntityName])
		msg.Body = fmt.Sprintf("Hello,\n\nThe application for %s (%s) has been approved. Login credentials were sent to the president and the adviser.",
			p[KeyEntityName], p[KeyEntityCode]) + signature

	case domain.NotificationApplicationRejected:
		msg.Subject = fmt.Sprintf("Application not approved: %s", p[KeyEntityName])
		msg.Body = fmt.Sprintf("Hello,\n\nThe application for %s was not approved.\n\nReason: %s",
			p[KeyEntityName], p[KeyReason]) + signature

	case domain.NotificationVerificationCode:
		msg.Sensitive = true
		msg.Subject = "Your application verification code"
		msg.Body = fmt.Sprintf("Hello,\n\nUse the code %s to confirm the application for %s. The code expires in %s.",
			p[KeyCode], p[KeyEntityName], p[KeyExpiresIn]) + signature

	case domain.NotificationDocumentReviewed:
		msg.Subject = fmt.Sprintf("%s %s: %s", stageLabel(p[KeyStage]), decisionLabel(p[KeyDecision]), documentLabel(p[KeyDocumentType]))
		body := fmt.Sprintf("Hello,\n\nThe %s for \"%s\" was %s by the %s.",
			documentLabel(p[KeyDocumentType]), p[KeyProposalTitle], decisionLabel(p[KeyDecision]), stageLabel(p[KeyStage]))
		if p[KeyReason] != "" {
			body += fmt.Sprintf("\n\nReason: %s", p[KeyReason])
		}
		msg.Body = body + signature

	case domain.NotificationDocumentResubmitted:
		msg.Subject = fmt.Sprintf("Document resubmitted: %s", documentLabel(p[KeyDocumentType]))
		msg.Body = fmt.Sprintf("Hello,\n\nThe %s for \"%s\" was resubmitted and is waiting for adviser review.",
			documentLabel(p[KeyDocumentType]), p[KeyProposalTitle]) + signature

	case domain.NotificationReviewDigest:
		msg.Subject = "Daily review digest"
		msg.Body = fmt.Sprintf("Hello,\n\nApplications pending review: %s\nDocuments awaiting OSAS review: %s",
			p[KeyPendingApps], p[KeyAwaitingOsas]) + signature

	default:
		return Message{}, fmt.Errorf("unknown notification kind: %s", kind)
	}
	return msg, nil
}

func roleLabel(role string) string {
	switch domain.Role(role) {
	case domain.RoleOrgPresident, domain.RoleCouncilPresident:
		return "president"
	case domain.RoleOrgAdviser, domain.RoleCouncilAdviser:
		return "adviser"
	}
	return role
}

func stageLabel(stage string) string {
	if stage == "osas" {
		return "OSAS"
	}
	return "adviser"
}

func decisionLabel(decision string) string {
	if decision == string(domain.DecisionApprove) {
		return "approved"
	}
	return "rejected"
}

func documentLabel(t string) string {
	return strings.ReplaceAll(t, "_", " ")
}
