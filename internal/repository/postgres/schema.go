package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/jackc/pgx/v5/pgxpool"
)

// notifyTables are the tables that publish row changes on the realtime channel.
func (t *TableNames) notifyTables() []string {
	return []string{
		t.Profiles, t.Follows, t.Categories, t.Posts, t.Comments,
		t.Providers, t.ProviderFollows, t.Portfolios, t.PortfolioCollects,
	}
}

// EnsureSchema creates tables, indexes, change triggers and RPC functions if they don't exist.
// Functions and triggers are replaced on every run.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool, tables *TableNames, channel string, logger *slog.Logger) error {
	statements := slices.Concat(
		[]string{`CREATE EXTENSION IF NOT EXISTS "pgcrypto"`},
		tableStatements(tables),
		indexStatements(tables),
		notifyStatements(tables, channel),
		rpcStatements(tables),
	)

	for i, stmt := range statements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("schema statement %d: %w", i, err)
		}
	}

	logger.Info("schema ensured",
		"prefix", tables.Prefix,
		"tables", len(tables.All()),
		"statements", len(statements),
	)
	return nil
}

// DropSchema drops all tables in reverse order (to respect foreign keys) and the installed functions.
func DropSchema(ctx context.Context, pool *pgxpool.Pool, tables *TableNames, logger *slog.Logger) error {
	all := tables.All()
	for i := len(all) - 1; i >= 0; i-- {
		if _, err := pool.Exec(ctx, "DROP TABLE IF EXISTS "+all[i]+" CASCADE"); err != nil {
			return fmt.Errorf("drop %s: %w", all[i], err)
		}
		logger.Info("dropped table", "table", all[i])
	}

	for _, fn := range []string{
		"notify_change()",
		"get_user_profile_with_stats(uuid, uuid)",
		"get_provider_full_profile(uuid, uuid)",
		"calculate_user_badges(uuid)",
		"record_portfolio_impression(uuid, uuid)",
	} {
		if _, err := pool.Exec(ctx, "DROP FUNCTION IF EXISTS "+tables.Func(fn)+" CASCADE"); err != nil {
			return fmt.Errorf("drop function %s: %w", fn, err)
		}
	}
	return nil
}

func tableStatements(t *TableNames) []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS ` + t.Profiles + ` (
			id UUID PRIMARY KEY,
			username TEXT NOT NULL UNIQUE,
			display_name TEXT NOT NULL DEFAULT '',
			avatar_url TEXT,
			bio TEXT NOT NULL DEFAULT '',
			location TEXT NOT NULL DEFAULT '',
			role TEXT NOT NULL DEFAULT 'user' CHECK (role IN ('user', 'admin')),
			banned_until TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS ` + t.Follows + ` (
			follower_id UUID NOT NULL REFERENCES ` + t.Profiles + `(id) ON DELETE CASCADE,
			followee_id UUID NOT NULL REFERENCES ` + t.Profiles + `(id) ON DELETE CASCADE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (follower_id, followee_id),
			CHECK (follower_id <> followee_id)
		)`,
		`CREATE TABLE IF NOT EXISTS ` + t.Categories + ` (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			parent_id UUID REFERENCES ` + t.Categories + `(id) ON DELETE RESTRICT,
			name VARCHAR(255) NOT NULL,
			slug TEXT NOT NULL UNIQUE,
			description TEXT NOT NULL DEFAULT '',
			sort_order INTEGER NOT NULL DEFAULT 0,
			post_count INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS ` + t.Posts + ` (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			author_id UUID NOT NULL REFERENCES ` + t.Profiles + `(id) ON DELETE CASCADE,
			category_id UUID REFERENCES ` + t.Categories + `(id) ON DELETE RESTRICT,
			title TEXT NOT NULL,
			body TEXT NOT NULL DEFAULT '',
			upvotes INTEGER NOT NULL DEFAULT 0,
			downvotes INTEGER NOT NULL DEFAULT 0,
			comment_count INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS ` + t.Comments + ` (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			post_id UUID NOT NULL REFERENCES ` + t.Posts + `(id) ON DELETE CASCADE,
			author_id UUID NOT NULL REFERENCES ` + t.Profiles + `(id) ON DELETE CASCADE,
			parent_id UUID REFERENCES ` + t.Comments + `(id) ON DELETE CASCADE,
			body TEXT NOT NULL,
			upvotes INTEGER NOT NULL DEFAULT 0,
			downvotes INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS ` + t.Votes + ` (
			user_id UUID NOT NULL REFERENCES ` + t.Profiles + `(id) ON DELETE CASCADE,
			target_type TEXT NOT NULL CHECK (target_type IN ('post', 'comment')),
			target_id UUID NOT NULL,
			value SMALLINT NOT NULL CHECK (value IN (-1, 1)),
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (user_id, target_type, target_id)
		)`,
		`CREATE TABLE IF NOT EXISTS ` + t.ProviderTypes + ` (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			name VARCHAR(255) NOT NULL UNIQUE,
			slug TEXT NOT NULL UNIQUE,
			description TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS ` + t.Providers + ` (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			user_id UUID NOT NULL UNIQUE REFERENCES ` + t.Profiles + `(id) ON DELETE CASCADE,
			provider_type_id UUID NOT NULL REFERENCES ` + t.ProviderTypes + `(id),
			display_name VARCHAR(255) NOT NULL,
			headline TEXT NOT NULL DEFAULT '',
			bio TEXT NOT NULL DEFAULT '',
			location TEXT NOT NULL DEFAULT '',
			website TEXT,
			verified BOOLEAN NOT NULL DEFAULT FALSE,
			follower_count INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS ` + t.ProviderFollows + ` (
			user_id UUID NOT NULL REFERENCES ` + t.Profiles + `(id) ON DELETE CASCADE,
			provider_id UUID NOT NULL REFERENCES ` + t.Providers + `(id) ON DELETE CASCADE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (user_id, provider_id)
		)`,
		`CREATE TABLE IF NOT EXISTS ` + t.Portfolios + ` (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			owner_id UUID NOT NULL REFERENCES ` + t.Profiles + `(id) ON DELETE CASCADE,
			provider_id UUID REFERENCES ` + t.Providers + `(id) ON DELETE SET NULL,
			title VARCHAR(255) NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			cover_url TEXT,
			tags TEXT[] NOT NULL DEFAULT '{}',
			impression_count INTEGER NOT NULL DEFAULT 0,
			collect_count INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS ` + t.PortfolioMedia + ` (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			portfolio_id UUID NOT NULL REFERENCES ` + t.Portfolios + `(id) ON DELETE CASCADE,
			url TEXT NOT NULL,
			content_type TEXT NOT NULL,
			position INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS ` + t.PortfolioCollects + ` (
			user_id UUID NOT NULL REFERENCES ` + t.Profiles + `(id) ON DELETE CASCADE,
			portfolio_id UUID NOT NULL REFERENCES ` + t.Portfolios + `(id) ON DELETE CASCADE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (user_id, portfolio_id)
		)`,
		`CREATE TABLE IF NOT EXISTS ` + t.PortfolioImpressions + ` (
			id BIGSERIAL PRIMARY KEY,
			portfolio_id UUID NOT NULL REFERENCES ` + t.Portfolios + `(id) ON DELETE CASCADE,
			viewer_id UUID,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
	}
}

func indexStatements(t *TableNames) []string {
	p := t.Prefix
	return []string{
		`CREATE INDEX IF NOT EXISTS idx_` + p + `follows_followee ON ` + t.Follows + `(followee_id)`,
		`CREATE INDEX IF NOT EXISTS idx_` + p + `categories_parent ON ` + t.Categories + `(parent_id)`,
		`CREATE INDEX IF NOT EXISTS idx_` + p + `posts_category_created ON ` + t.Posts + `(category_id, created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_` + p + `posts_author ON ` + t.Posts + `(author_id)`,
		`CREATE INDEX IF NOT EXISTS idx_` + p + `comments_post ON ` + t.Comments + `(post_id, created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_` + p + `comments_author ON ` + t.Comments + `(author_id)`,
		`CREATE INDEX IF NOT EXISTS idx_` + p + `votes_target ON ` + t.Votes + `(target_type, target_id)`,
		`CREATE INDEX IF NOT EXISTS idx_` + p + `providers_type ON ` + t.Providers + `(provider_type_id)`,
		`CREATE INDEX IF NOT EXISTS idx_` + p + `providers_fts ON ` + t.Providers + ` USING GIN (` + providerTSVector + `)`,
		`CREATE INDEX IF NOT EXISTS idx_` + p + `portfolios_owner ON ` + t.Portfolios + `(owner_id, created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_` + p + `portfolios_provider ON ` + t.Portfolios + `(provider_id)`,
		`CREATE INDEX IF NOT EXISTS idx_` + p + `portfolio_media_portfolio ON ` + t.PortfolioMedia + `(portfolio_id, position)`,
	}
}

// providerTSVector is shared by the FTS index and the fallback search query so the planner can use the index.
const providerTSVector = `to_tsvector('simple', display_name || ' ' || headline || ' ' || bio || ' ' || location)`

// notifyStatements install one trigger function publishing
// {schema, table, type, record, old_record, commit_timestamp} on channel.
// pg_notify payloads are capped at 8000 bytes, so long text columns are
// stripped from oversized records.
func notifyStatements(t *TableNames, channel string) []string {
	fn := t.Func("notify_change")
	stmts := []string{
		`CREATE OR REPLACE FUNCTION ` + fn + `() RETURNS trigger AS $$
		DECLARE
			rec JSONB;
			old_rec JSONB;
			payload TEXT;
		BEGIN
			IF TG_OP <> 'DELETE' THEN
				rec := to_jsonb(NEW);
			END IF;
			IF TG_OP <> 'INSERT' THEN
				old_rec := to_jsonb(OLD);
			END IF;
			payload := jsonb_build_object(
				'schema', TG_TABLE_SCHEMA,
				'table', TG_TABLE_NAME,
				'type', TG_OP,
				'record', rec,
				'old_record', old_rec,
				'commit_timestamp', NOW()
			)::text;
			IF octet_length(payload) > 7900 THEN
				payload := jsonb_build_object(
					'schema', TG_TABLE_SCHEMA,
					'table', TG_TABLE_NAME,
					'type', TG_OP,
					'record', rec - 'body' - 'bio' - 'description',
					'old_record', old_rec - 'body' - 'bio' - 'description',
					'commit_timestamp', NOW()
				)::text;
			END IF;
			PERFORM pg_notify('` + channel + `', payload);
			RETURN COALESCE(NEW, OLD);
		END;
		$$ LANGUAGE plpgsql`,
	}

	for _, table := range t.notifyTables() {
		trigger := table + "_changes"
		stmts = append(stmts,
			`DROP TRIGGER IF EXISTS `+trigger+` ON `+table,
			`CREATE TRIGGER `+trigger+` AFTER INSERT OR UPDATE OR DELETE ON `+table+
				` FOR EACH ROW EXECUTE FUNCTION `+fn+`()`,
		)
	}
	return stmts
}

func rpcStatements(t *TableNames) []string {
	return []string{
		`CREATE OR REPLACE FUNCTION ` + t.Func("get_user_profile_with_stats") + `(p_user_id UUID, p_viewer_id UUID)
		RETURNS JSONB AS $$
			SELECT to_jsonb(p) || jsonb_build_object(
				'post_count', (SELECT COUNT(*) FROM ` + t.Posts + ` WHERE author_id = p.id),
				'comment_count', (SELECT COUNT(*) FROM ` + t.Comments + ` WHERE author_id = p.id),
				'follower_count', (SELECT COUNT(*) FROM ` + t.Follows + ` WHERE followee_id = p.id),
				'following_count', (SELECT COUNT(*) FROM ` + t.Follows + ` WHERE follower_id = p.id),
				'reputation',
					COALESCE((SELECT SUM(upvotes - downvotes) FROM ` + t.Posts + ` WHERE author_id = p.id), 0) +
					COALESCE((SELECT SUM(upvotes - downvotes) FROM ` + t.Comments + ` WHERE author_id = p.id), 0),
				'is_following', EXISTS (
					SELECT 1 FROM ` + t.Follows + ` WHERE follower_id = p_viewer_id AND followee_id = p.id
				)
			)
			FROM ` + t.Profiles + ` p
			WHERE p.id = p_user_id
		$$ LANGUAGE sql STABLE`,

		`CREATE OR REPLACE FUNCTION ` + t.Func("get_provider_full_profile") + `(p_provider_id UUID, p_viewer_id UUID)
		RETURNS JSONB AS $$
			SELECT to_jsonb(pr) || jsonb_build_object(
				'is_following', EXISTS (
					SELECT 1 FROM ` + t.ProviderFollows + ` WHERE user_id = p_viewer_id AND provider_id = pr.id
				),
				'type', (SELECT to_jsonb(pt) FROM ` + t.ProviderTypes + ` pt WHERE pt.id = pr.provider_type_id),
				'owner', (SELECT to_jsonb(o) FROM ` + t.Profiles + ` o WHERE o.id = pr.user_id),
				'portfolios', COALESCE((
					SELECT jsonb_agg(to_jsonb(f) ORDER BY f.created_at DESC)
					FROM ` + t.Portfolios + ` f WHERE f.provider_id = pr.id
				), '[]'::jsonb)
			)
			FROM ` + t.Providers + ` pr
			WHERE pr.id = p_provider_id
		$$ LANGUAGE sql STABLE`,

		`CREATE OR REPLACE FUNCTION ` + t.Func("calculate_user_badges") + `(p_user_id UUID)
		RETURNS TABLE (code TEXT, earned_at TIMESTAMPTZ) AS $$
			SELECT 'first_post', MIN(created_at) FROM ` + t.Posts + ` WHERE author_id = p_user_id
				HAVING COUNT(*) >= 1
			UNION ALL
			SELECT 'prolific', (
				SELECT created_at FROM ` + t.Posts + ` WHERE author_id = p_user_id
				ORDER BY created_at OFFSET 9 LIMIT 1
			) WHERE (SELECT COUNT(*) FROM ` + t.Posts + ` WHERE author_id = p_user_id) >= 10
			UNION ALL
			SELECT 'conversationalist', (
				SELECT created_at FROM ` + t.Comments + ` WHERE author_id = p_user_id
				ORDER BY created_at OFFSET 24 LIMIT 1
			) WHERE (SELECT COUNT(*) FROM ` + t.Comments + ` WHERE author_id = p_user_id) >= 25
			UNION ALL
			SELECT 'well_received', MIN(created_at) FROM ` + t.Posts + `
				WHERE author_id = p_user_id AND upvotes - downvotes >= 10
				HAVING COUNT(*) >= 1
			UNION ALL
			SELECT 'popular', (
				SELECT created_at FROM ` + t.Follows + ` WHERE followee_id = p_user_id
				ORDER BY created_at OFFSET 9 LIMIT 1
			) WHERE (SELECT COUNT(*) FROM ` + t.Follows + ` WHERE followee_id = p_user_id) >= 10
			UNION ALL
			SELECT 'provider', created_at FROM ` + t.Providers + ` WHERE user_id = p_user_id
			UNION ALL
			SELECT 'verified_provider', updated_at FROM ` + t.Providers + ` WHERE user_id = p_user_id AND verified
			UNION ALL
			SELECT 'curator', (
				SELECT created_at FROM ` + t.PortfolioCollects + ` WHERE user_id = p_user_id
				ORDER BY created_at OFFSET 4 LIMIT 1
			) WHERE (SELECT COUNT(*) FROM ` + t.PortfolioCollects + ` WHERE user_id = p_user_id) >= 5
			UNION ALL
			SELECT 'veteran', created_at + INTERVAL '1 year' FROM ` + t.Profiles + `
				WHERE id = p_user_id AND created_at <= NOW() - INTERVAL '1 year'
		$$ LANGUAGE sql STABLE`,

		`CREATE OR REPLACE FUNCTION ` + t.Func("record_portfolio_impression") + `(p_portfolio_id UUID, p_viewer_id UUID)
		RETURNS INTEGER AS $$
		DECLARE
			n INTEGER;
		BEGIN
			UPDATE ` + t.Portfolios + ` SET impression_count = impression_count + 1
			WHERE id = p_portfolio_id
			RETURNING impression_count INTO n;
			IF n IS NULL THEN
				RETURN NULL;
			END IF;
			INSERT INTO ` + t.PortfolioImpressions + ` (portfolio_id, viewer_id) VALUES (p_portfolio_id, p_viewer_id);
			RETURN n;
		END;
		$$ LANGUAGE plpgsql`,
	}
}
