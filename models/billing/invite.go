package billing

import (
	"time"

	"github.com/uptrace/bun"
)

// Invite keeps the column names of the original convites schema.
// AllowedResponses stays null until a payment is reconciled.
type Invite struct {
	bun.BaseModel `bun:"convites,alias:convite"`

	Id               string    `bun:",pk" json:"id"`
	Title            string    `bun:"titulo" json:"title"`
	Theme            string    `bun:"tema" json:"theme"`
	MusicUrl         string    `bun:"musica_url,nullzero" json:"musicUrl,omitempty"`
	UserId           string    `bun:"user_id" json:"userId"`
	CreatedAt        time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"createdAt"`
	Paid             bool      `bun:"pago" json:"paid"`
	PlanId           int64     `bun:"plano_id,nullzero" json:"planId,omitempty"`
	AllowedResponses int       `bun:"respostas_permitidas,nullzero" json:"allowedResponses,omitempty"`
	UsedResponses    int       `bun:"respostas_utilizadas" json:"usedResponses"`

	Plan *Plan `bun:"rel:belongs-to,join:plano_id=id" json:"plan,omitempty"`
}
