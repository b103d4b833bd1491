package service

import (
	"context"
	"errors"
	"fmt"

	"cs-ladder/internal/api"
	"cs-ladder/internal/constants"
	"cs-ladder/internal/repository"
	"cs-ladder/internal/scan"

	"github.com/rs/zerolog"
)

// ErrScanUnavailable is returned when no text-extraction service is
// configured.
var ErrScanUnavailable = errors.New("text extraction service not configured")

// ScanResult is the outcome of a scoreboard screenshot scan.
type ScanResult struct {
	Players        []scan.PlayerLine `json:"players"`
	RawText        []string          `json:"raw_text"`
	TotalTextLines int               `json:"total_text_lines"`
	PlayersFound   int               `json:"players_found"`
}

// ScanService runs screenshot uploads through the external text extractor
// and parses the result against the known roster.
type ScanService struct {
	playerRepo *repository.PlayerRepository
	ocr        *api.OCRClient
	logger     zerolog.Logger
}

func NewScanService(playerRepo *repository.PlayerRepository, ocr *api.OCRClient, logger zerolog.Logger) *ScanService {
	return &ScanService{playerRepo: playerRepo, ocr: ocr, logger: logger}
}

// ScanScreenshot extracts text from the image and pulls out stat rows for
// every roster name it can find.
func (s *ScanService) ScanScreenshot(ctx context.Context, image []byte) (*ScanResult, error) {
	if !s.ocr.Enabled() {
		return nil, ErrScanUnavailable
	}

	ctx, cancel := context.WithTimeout(ctx, constants.ExternalAPITimeout)
	defer cancel()

	lines, err := s.ocr.ExtractText(ctx, image)
	if err != nil {
		return nil, fmt.Errorf("text extraction failed: %w", err)
	}

	players, err := s.playerRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load roster: %w", err)
	}
	names := make([]string, len(players))
	for i, p := range players {
		names[i] = p.Name
	}

	found := scan.ParseScoreboard(lines, names)

	raw := lines
	if len(raw) > 30 {
		raw = raw[:30]
	}

	s.logger.Info().
		Int("text_lines", len(lines)).
		Int("players_found", len(found)).
		Msg("screenshot scanned")

	return &ScanResult{
		Players:        found,
		RawText:        raw,
		TotalTextLines: len(lines),
		PlayersFound:   len(found),
	}, nil
}
