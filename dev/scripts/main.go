package main

import (
	"context"
	"database/sql"
	"flag"
	"time"

	"github.com/google/uuid"
	"github.com/rabicho/rabicho-server/models/billing"
	"github.com/rs/zerolog/log"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

// Seeds demo plans and one unpaid invite for local checkout testing.
func main() {
	dsn := flag.String("dsn", "", "postgres dsn")
	userId := flag.String("user", "dev-user", "owner id for the demo invite")
	flag.Parse()

	if len(*dsn) == 0 {
		log.Fatal().Msg("-dsn is required")
	}

	pgdb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(*dsn)))
	db := bun.NewDB(pgdb, pgdialect.New())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()

	plans := []billing.Plan{
		{Name: "Básico", Description: "Convite com 10 respostas", ResponseQuota: 10, Price: 9.90},
		{Name: "Festa", Description: "Convite com 50 respostas", ResponseQuota: 50, Price: 29.90},
		{Name: "Casamento", Description: "Convite com 200 respostas", ResponseQuota: 200, Price: 79.90},
	}

	if _, err := db.NewInsert().Model(&plans).Exec(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to seed plans")
	}

	invite := billing.Invite{
		Id:     uuid.NewString(),
		Title:  "Convite de teste",
		Theme:  "classic",
		UserId: *userId,
	}

	if _, err := db.NewInsert().Model(&invite).Exec(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to seed invite")
	}

	log.Info().
		Str("invite_id", invite.Id).
		Int("plans", len(plans)).
		Msg("Seeded demo data")
}
