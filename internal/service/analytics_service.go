package service

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite" // SQLite driver (pure Go, no CGO)

	"github.com/randomdance/api/internal/model"
)

// AnalyticsService records visits and generation requests in SQLite and
// aggregates them for the admin page. Logging is best-effort: failures
// are logged and never surfaced to callers.
type AnalyticsService struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewAnalyticsService(dbPath string, logger zerolog.Logger) (*AnalyticsService, error) {
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", dbPath)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open analytics database: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping analytics database: %w", err)
	}

	s := &AnalyticsService{db: db, logger: logger}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate analytics database: %w", err)
	}
	return s, nil
}

func (s *AnalyticsService) Close() error {
	return s.db.Close()
}

func (s *AnalyticsService) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS visits (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
		user_agent TEXT,
		ip TEXT
	);

	CREATE TABLE IF NOT EXISTS generations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
		job_id TEXT,
		song_count INTEGER
	);

	CREATE TABLE IF NOT EXISTS generation_songs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		generation_id INTEGER,
		youtube_url TEXT,
		title TEXT,
		FOREIGN KEY (generation_id) REFERENCES generations(id)
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// LogVisit records one front-page visit.
func (s *AnalyticsService) LogVisit(ctx context.Context, userAgent, ip string) {
	_, err := s.db.ExecContext(ctx, "INSERT INTO visits (user_agent, ip) VALUES (?, ?)", userAgent, ip)
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to log visit")
	}
}

// LogGeneration records a submitted generation with its song list.
func (s *AnalyticsService) LogGeneration(ctx context.Context, jobID string, segments []model.SongSegment) {
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO generations (job_id, song_count) VALUES (?, ?)", jobID, len(segments))
	if err != nil {
		s.logger.Warn().Err(err).Str("job_id", jobID).Msg("failed to log generation")
		return
	}

	generationID, err := res.LastInsertId()
	if err != nil {
		s.logger.Warn().Err(err).Str("job_id", jobID).Msg("failed to log generation")
		return
	}

	for _, segment := range segments {
		_, err := s.db.ExecContext(ctx,
			"INSERT INTO generation_songs (generation_id, youtube_url, title) VALUES (?, ?, ?)",
			generationID, segment.YoutubeURL, segment.Title)
		if err != nil {
			s.logger.Warn().Err(err).Str("job_id", jobID).Msg("failed to log generation song")
		}
	}
}

// Stats aggregates usage totals and the ten most requested songs.
func (s *AnalyticsService) Stats(ctx context.Context) (*model.StatsResponse, error) {
	stats := &model.StatsResponse{TopSongs: []model.TopSong{}}

	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM visits").Scan(&stats.TotalVisits); err != nil {
		return nil, fmt.Errorf("count visits: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM generations").Scan(&stats.TotalGenerations); err != nil {
		return nil, fmt.Errorf("count generations: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT title, youtube_url, COUNT(*) as count
		FROM generation_songs
		GROUP BY youtube_url
		ORDER BY count DESC
		LIMIT 10
	`)
	if err != nil {
		return nil, fmt.Errorf("query top songs: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var song model.TopSong
		if err := rows.Scan(&song.Title, &song.YoutubeURL, &song.Count); err != nil {
			return nil, fmt.Errorf("scan top song: %w", err)
		}
		stats.TopSongs = append(stats.TopSongs, song)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate top songs: %w", err)
	}

	return stats, nil
}
