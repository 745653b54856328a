package postgres

import (
	"context"

	"github.com/xraph/grove/migrate"
)

// Migrations is the grove migration group for the Paywall store.
var Migrations = migrate.NewGroup("paywall")

func init() {
	Migrations.MustRegister(
		&migrate.Migration{
			Name:    "create_paywall_articles",
			Version: "20240101000001",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS paywall_articles (
    id           BIGINT PRIMARY KEY,
    author       TEXT NOT NULL DEFAULT '',
    price_cents  BIGINT NOT NULL DEFAULT 0,
    currency     TEXT NOT NULL DEFAULT '',
    content_ref  TEXT NOT NULL DEFAULT '',
    published_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_paywall_articles_author ON paywall_articles (author);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS paywall_articles`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_paywall_payments",
			Version: "20240101000002",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS paywall_payments (
    id                  TEXT PRIMARY KEY,
    article_id          BIGINT NOT NULL DEFAULT 0,
    payer               TEXT NOT NULL DEFAULT '',
    author              TEXT NOT NULL DEFAULT '',
    amount_cents        BIGINT NOT NULL DEFAULT 0,
    currency            TEXT NOT NULL DEFAULT '',
    platform_fee_cents  BIGINT NOT NULL DEFAULT 0,
    author_amount_cents BIGINT NOT NULL DEFAULT 0,
    fee_rate            INT NOT NULL DEFAULT 0,
    state               TEXT NOT NULL DEFAULT 'paid',
    paid_at             TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    refunded_at         TIMESTAMPTZ,
    created_at          TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at          TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_paywall_payments_article_payer ON paywall_payments (article_id, payer);
CREATE INDEX IF NOT EXISTS idx_paywall_payments_state ON paywall_payments (article_id, payer, state);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS paywall_payments`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_paywall_balances",
			Version: "20240101000003",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS paywall_balances (
    kind         TEXT NOT NULL,
    owner        TEXT NOT NULL DEFAULT '',
    amount_cents BIGINT NOT NULL DEFAULT 0,
    currency     TEXT NOT NULL DEFAULT '',
    updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    PRIMARY KEY (kind, owner)
);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS paywall_balances`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_paywall_withdrawals",
			Version: "20240101000004",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS paywall_withdrawals (
    id           TEXT PRIMARY KEY,
    kind         TEXT NOT NULL DEFAULT '',
    recipient    TEXT NOT NULL DEFAULT '',
    amount_cents BIGINT NOT NULL DEFAULT 0,
    currency     TEXT NOT NULL DEFAULT '',
    status       TEXT NOT NULL DEFAULT 'completed',
    fail_reason  TEXT NOT NULL DEFAULT '',
    created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_paywall_withdrawals_kind_status ON paywall_withdrawals (kind, status);
CREATE INDEX IF NOT EXISTS idx_paywall_withdrawals_recipient ON paywall_withdrawals (recipient);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS paywall_withdrawals`)
				return err
			},
		},
	)
}
