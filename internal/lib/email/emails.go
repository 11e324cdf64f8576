package email

// WithdrawalEmail carries the fields shown in withdrawal notifications.
type WithdrawalEmail struct {
	WithdrawalID string
	Status       string
	Amount       string
	Message      string
}

// SendWithdrawalRequestedEmail confirms a new withdrawal request to the vendor.
func (c *Client) SendWithdrawalRequestedEmail(to string, w WithdrawalEmail) error {
	return c.SendEmail(
		to,
		"We received your withdrawal request",
		TemplateWithdrawalRequested,
		w.templateData(),
	)
}

// SendWithdrawalStatusEmail tells the vendor their withdrawal moved to a new status.
func (c *Client) SendWithdrawalStatusEmail(to string, w WithdrawalEmail) error {
	return c.SendEmail(
		to,
		"Withdrawal update: "+w.Status,
		TemplateWithdrawalStatus,
		w.templateData(),
	)
}

func (w WithdrawalEmail) templateData() map[string]string {
	return map[string]string{
		"WithdrawalID": w.WithdrawalID,
		"Status":       w.Status,
		"Amount":       w.Amount,
		"Message":      w.Message,
	}
}
