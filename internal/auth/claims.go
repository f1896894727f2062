package auth

// PilotClaims is the authenticated principal attached to every request.
// JWT-authenticated pilots and API-key-authenticated bot integrations both
// satisfy it.
type PilotClaims interface {
	PilotID() string
	Email() string
	Source() string
	IsBot() bool
}

// JWTClaims is a pilot authenticated through the identity provider's token.
type JWTClaims struct {
	PilotUUID  string
	EmailValue string
}

func (c *JWTClaims) PilotID() string { return c.PilotUUID }
func (c *JWTClaims) Email() string   { return c.EmailValue }
func (c *JWTClaims) Source() string  { return "JWT" }
func (c *JWTClaims) IsBot() bool     { return false }

// BotClaims is an external bot integration authenticated by API key. It acts
// on behalf of no particular pilot; handlers that accept bot traffic resolve
// the pilot from the request payload instead.
type BotClaims struct {
	KeyID      string
	LabelValue string
}

func (c *BotClaims) PilotID() string { return "" }
func (c *BotClaims) Email() string   { return "" }
func (c *BotClaims) Source() string  { return "API_KEY" }
func (c *BotClaims) IsBot() bool     { return true }
