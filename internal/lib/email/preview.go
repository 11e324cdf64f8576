package email

// PreviewData holds sample values for rendering each template locally.
var PreviewData = map[Template]map[string]string{
	TemplateWithdrawalRequested: {
		"WithdrawalID": "8b0f6c1e-6f43-4d7c-9a55-2f1f5e0e2c11",
		"Status":       "PENDING",
		"Amount":       "900.00",
		"Message":      "Your withdrawal request of 900.00 has been submitted and is pending review.",
	},
	TemplateWithdrawalStatus: {
		"WithdrawalID": "8b0f6c1e-6f43-4d7c-9a55-2f1f5e0e2c11",
		"Status":       "COMPLETED",
		"Amount":       "900.00",
		"Message":      "Your withdrawal of 900.00 has been completed. Admin note: transferred to BCA",
	},
}
