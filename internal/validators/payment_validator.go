package validators

type RechargeRequest struct {
	Phone   string `json:"phone" validate:"required,togo_phone"`
	Amount  int64  `json:"amount" validate:"required,gt=0"`
	Network string `json:"network" validate:"network"`
}

type BuyTicketRequest struct {
	Quantity int64 `json:"quantity" validate:"omitempty,min=1,max=100"`
}

type ScanRequest struct {
	QRPayload string `json:"qrPayload" validate:"required"`
}

type RegisterRequest struct {
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
	Phone     string `json:"phone" validate:"required,togo_phone"`
	Password  string `json:"password" validate:"required,min=6"`
}

type LoginRequest struct {
	Phone    string `json:"phone" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}
