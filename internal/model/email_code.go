package model

// EmailCode is one pending one-time code. Rows are never deleted; Used is
// flipped exactly once on consumption and rows expire logically by time.
type EmailCode struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Code      string `json:"code"`
	Purpose   string `json:"purpose"`
	Used      int    `json:"used"`
	Ctime     int64  `json:"ctime"`
	ExpiresAt int64  `json:"expires_at"`
}
