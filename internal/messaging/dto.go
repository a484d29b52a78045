package messaging

type SendMessageInput struct {
	RecipientID int64  `json:"recipient_id" validate:"required,gt=0"`
	Body        string `json:"body" validate:"required,max=4000"`
}
