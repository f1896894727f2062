package dtos

type CreateOperatorReq struct {
	Name       string  `json:"name"`
	AESANumber *string `json:"aesa_number,omitempty"`
	Phone      *string `json:"phone,omitempty"`
	Address    *string `json:"address,omitempty"`
}

type SwitchOperatorReq struct {
	OperatorID string `json:"operator_id"`
}

type JoinOperatorReq struct {
	OperatorID string `json:"operator_id"`
}

type ReviewJoinReq struct {
	Decision string `json:"decision"` // "accept" | "reject"
}

type UpdateProfileReq struct {
	DisplayName *string `json:"display_name,omitempty"`
	Phone       *string `json:"phone,omitempty"`
}

type CreateCheckoutReq struct {
	PriceID      string `json:"price_id"`
	PlanID       string `json:"plan_id"`
	BillingCycle string `json:"billing_cycle"`
}

type CompleteTelegramLinkReq struct {
	Code             string `json:"code"`
	TelegramChatID   int64  `json:"telegram_chat_id"`
	TelegramUsername string `json:"telegram_username"`
	BotSecret        string `json:"bot_secret"`
}

type CreateFlightReq struct {
	DroneID     *string `json:"drone_id,omitempty"`
	Location    string  `json:"location"`
	DurationMin int     `json:"duration_min"`
	FlownAt     string  `json:"flown_at"` // RFC3339
	Notes       *string `json:"notes,omitempty"`
}
