package dto

// Attachment is a base64-encoded file attached to an outgoing email
type Attachment struct {
	Filename    string `json:"filename" binding:"required"`
	Content     string `json:"content" binding:"required"`
	ContentType string `json:"content_type" binding:"omitempty"`
}

// SendEmailRequest represents a single transactional email
type SendEmailRequest struct {
	To          string       `json:"to" binding:"required,email"`
	Subject     string       `json:"subject" binding:"required"`
	HTML        string       `json:"html" binding:"required"`
	From        string       `json:"from" binding:"omitempty,email"`
	Attachments []Attachment `json:"attachments" binding:"omitempty"`
}

// BulkRecipient carries the per-recipient values substituted into the
// template placeholders before each send.
type BulkRecipient struct {
	Email        string `json:"email" binding:"required,email"`
	Nom          string `json:"nom"`
	Prenom       string `json:"prenom"`
	Montant      string `json:"montant"`
	DateEmission string `json:"date_emission"`
	DateEcheance string `json:"date_echeance"`
	LotNom       string `json:"lot_nom"`
}

// SendBulkEmailRequest represents a bulk send, e.g. a copropriety fund call
// (appel de fond) addressed to every lot owner.
type SendBulkEmailRequest struct {
	Recipients  []BulkRecipient `json:"recipients" binding:"required,min=1,dive"`
	Subject     string          `json:"subject" binding:"required"`
	HTML        string          `json:"html" binding:"required"`
	From        string          `json:"from" binding:"omitempty,email"`
	Attachments []Attachment    `json:"attachments" binding:"omitempty"`
	AppelDeFond bool            `json:"appelDeFond"`
}

// BulkSendResult reports the outcome for one recipient
type BulkSendResult struct {
	Email   string `json:"email"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// SendBulkEmailResponse aggregates per-recipient outcomes
type SendBulkEmailResponse struct {
	Sent    int              `json:"sent"`
	Failed  int              `json:"failed"`
	Results []BulkSendResult `json:"results"`
}
