package email

// Template names a file under templates/ without its extension.
type Template string

const (
	TemplateWithdrawalRequested Template = "withdrawal_requested"
	TemplateWithdrawalStatus    Template = "withdrawal_status"
)
