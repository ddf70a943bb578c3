package database

import (
	"context"
	"database/sql"
	"fmt"
)

// schema is applied in order; every statement is idempotent.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		email         VARCHAR(255)    NOT NULL,
		password_hash VARCHAR(255)    NOT NULL,
		name          VARCHAR(100)    NOT NULL,
		role          ENUM('user','companyuser','admin') NOT NULL DEFAULT 'user',
		created_at    DATETIME        NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at    DATETIME        NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		UNIQUE KEY uq_users_email (email)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS refresh_tokens (
		id         BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		user_id    BIGINT UNSIGNED NOT NULL,
		token_hash CHAR(64)        NOT NULL,
		expires_at DATETIME        NOT NULL,
		revoked_at DATETIME        NULL,
		created_at DATETIME        NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UNIQUE KEY uq_refresh_tokens_hash (token_hash),
		CONSTRAINT fk_refresh_tokens_user FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS companies (
		id             BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		name           VARCHAR(255)    NOT NULL,
		location       VARCHAR(100)    NOT NULL DEFAULT '',
		industry       VARCHAR(100)    NOT NULL DEFAULT '',
		website        VARCHAR(255)    NOT NULL DEFAULT '',
		contact_number VARCHAR(20)     NOT NULL DEFAULT '',
		created_at     DATETIME        NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at     DATETIME        NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		UNIQUE KEY uq_companies_name (name)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS jobs (
		id              BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		title           VARCHAR(255)    NOT NULL,
		company_id      BIGINT UNSIGNED NULL,
		location        VARCHAR(100)    NOT NULL DEFAULT '',
		experience      VARCHAR(50)     NOT NULL DEFAULT '',
		education       VARCHAR(50)     NOT NULL DEFAULT '',
		employment_type VARCHAR(50)     NOT NULL DEFAULT '',
		deadline        DATE            NULL,
		tech_stack      TEXT            NULL,
		salary          VARCHAR(100)    NOT NULL DEFAULT '',
		description     TEXT            NULL,
		link            VARCHAR(512)    NOT NULL,
		views           INT UNSIGNED    NOT NULL DEFAULT 0,
		created_at      DATETIME        NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at      DATETIME        NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		UNIQUE KEY uq_jobs_link (link),
		KEY idx_jobs_company (company_id),
		CONSTRAINT fk_jobs_company FOREIGN KEY (company_id) REFERENCES companies(id) ON DELETE SET NULL
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS applications (
		id         BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		user_id    BIGINT UNSIGNED NOT NULL,
		job_id     BIGINT UNSIGNED NOT NULL,
		resume     TEXT            NULL,
		status     VARCHAR(20)     NOT NULL,
		created_at DATETIME        NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME        NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		UNIQUE KEY uq_applications_user_job (user_id, job_id),
		KEY idx_applications_job (job_id),
		CONSTRAINT fk_applications_user FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE,
		CONSTRAINT fk_applications_job FOREIGN KEY (job_id) REFERENCES jobs(id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS interviews (
		id               BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		application_id   BIGINT UNSIGNED NOT NULL,
		user_id          BIGINT UNSIGNED NOT NULL,
		interview_date   DATETIME        NOT NULL,
		interview_status ENUM('scheduled','completed','cancelled') NOT NULL DEFAULT 'scheduled',
		feedback         TEXT            NULL,
		created_at       DATETIME        NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at       DATETIME        NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		UNIQUE KEY uq_interviews_application (application_id),
		CONSTRAINT fk_interviews_application FOREIGN KEY (application_id) REFERENCES applications(id) ON DELETE CASCADE,
		CONSTRAINT fk_interviews_user FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS job_reviews (
		id          BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		job_id      BIGINT UNSIGNED NOT NULL,
		user_id     BIGINT UNSIGNED NOT NULL,
		rating      TINYINT UNSIGNED NOT NULL,
		review_text TEXT            NOT NULL,
		created_at  DATETIME        NOT NULL DEFAULT CURRENT_TIMESTAMP,
		KEY idx_job_reviews_job (job_id),
		CONSTRAINT chk_job_reviews_rating CHECK (rating BETWEEN 1 AND 5),
		CONSTRAINT fk_job_reviews_job FOREIGN KEY (job_id) REFERENCES jobs(id) ON DELETE CASCADE,
		CONSTRAINT fk_job_reviews_user FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS bookmarks (
		id         BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		user_id    BIGINT UNSIGNED NOT NULL,
		job_id     BIGINT UNSIGNED NOT NULL,
		created_at DATETIME        NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UNIQUE KEY uq_bookmarks_user_job (user_id, job_id),
		CONSTRAINT fk_bookmarks_user FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE,
		CONSTRAINT fk_bookmarks_job FOREIGN KEY (job_id) REFERENCES jobs(id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS notifications (
		id         BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		user_id    BIGINT UNSIGNED NOT NULL,
		message    VARCHAR(500)    NOT NULL,
		is_read    TINYINT(1)      NOT NULL DEFAULT 0,
		created_at DATETIME        NOT NULL DEFAULT CURRENT_TIMESTAMP,
		KEY idx_notifications_user (user_id, is_read),
		CONSTRAINT fk_notifications_user FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// Migrate creates missing tables and converts a legacy free-text
// jobs.company column into the companies foreign key.
func Migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return migrateJobCompanies(ctx, db)
}

// migrateJobCompanies is a no-op unless jobs still has the text column.
// Each step checks the schema first, so an interrupted run can be resumed.
func migrateJobCompanies(ctx context.Context, db *sql.DB) error {
	legacy, err := columnExists(ctx, db, "jobs", "company")
	if err != nil || !legacy {
		return err
	}
	hasFK, err := columnExists(ctx, db, "jobs", "company_id")
	if err != nil {
		return err
	}
	if !hasFK {
		if _, err := db.ExecContext(ctx, `ALTER TABLE jobs
			ADD COLUMN company_id BIGINT UNSIGNED NULL,
			ADD CONSTRAINT fk_jobs_company FOREIGN KEY (company_id) REFERENCES companies(id) ON DELETE SET NULL`); err != nil {
			return fmt.Errorf("add jobs.company_id: %w", err)
		}
	}
	if _, err := db.ExecContext(ctx, `INSERT INTO companies (name)
		SELECT DISTINCT TRIM(company) FROM jobs
		WHERE company IS NOT NULL AND TRIM(company) <> ''
		ON DUPLICATE KEY UPDATE name = companies.name`); err != nil {
		return fmt.Errorf("backfill companies: %w", err)
	}
	if _, err := db.ExecContext(ctx, `UPDATE jobs j
		JOIN companies c ON c.name = TRIM(j.company)
		SET j.company_id = c.id
		WHERE j.company_id IS NULL`); err != nil {
		return fmt.Errorf("link jobs to companies: %w", err)
	}
	if _, err := db.ExecContext(ctx, `ALTER TABLE jobs DROP COLUMN company`); err != nil {
		return fmt.Errorf("drop jobs.company: %w", err)
	}
	return nil
}

func columnExists(ctx context.Context, db *sql.DB, table, column string) (bool, error) {
	var n int
	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM information_schema.COLUMNS
		WHERE TABLE_SCHEMA = DATABASE() AND TABLE_NAME = ? AND COLUMN_NAME = ?`, table, column).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("inspect %s.%s: %w", table, column, err)
	}
	return n > 0, nil
}
