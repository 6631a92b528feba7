package billing

import "github.com/uptrace/bun"

type Plan struct {
	bun.BaseModel `bun:"planos,alias:plano"`

	Id            int64   `bun:",pk,autoincrement" json:"id"`
	Name          string  `bun:"nome" json:"name"`
	Description   string  `bun:"descricao" json:"description"`
	ResponseQuota int     `bun:"quantidade_respostas" json:"responseQuota"`
	Price         float64 `bun:"preco" json:"price"`
}
