package server

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"cs-ladder/internal/constants"
	"cs-ladder/internal/service"

	"github.com/rs/zerolog"
)

// LadderServer is the JSON HTTP surface of the ladder.
type LadderServer struct {
	leaderboardSvc *service.LeaderboardService
	matchmakerSvc  *service.MatchmakerService
	ratingSvc      *service.RatingService
	historySvc     *service.HistoryService
	recordsSvc     *service.RecordsService
	profileSvc     *service.ProfileService
	presenceSvc    *service.PresenceService
	rosterSvc      *service.RosterService
	scanSvc        *service.ScanService
	logger         zerolog.Logger
}

func NewLadderServer(
	leaderboardSvc *service.LeaderboardService,
	matchmakerSvc *service.MatchmakerService,
	ratingSvc *service.RatingService,
	historySvc *service.HistoryService,
	recordsSvc *service.RecordsService,
	profileSvc *service.ProfileService,
	presenceSvc *service.PresenceService,
	rosterSvc *service.RosterService,
	scanSvc *service.ScanService,
	logger zerolog.Logger,
) *LadderServer {
	return &LadderServer{
		leaderboardSvc: leaderboardSvc,
		matchmakerSvc:  matchmakerSvc,
		ratingSvc:      ratingSvc,
		historySvc:     historySvc,
		recordsSvc:     recordsSvc,
		profileSvc:     profileSvc,
		presenceSvc:    presenceSvc,
		rosterSvc:      rosterSvc,
		scanSvc:        scanSvc,
		logger:         logger,
	}
}

// Register wires every endpoint onto the mux.
func (s *LadderServer) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/database", s.handleDatabase)
	mux.HandleFunc("GET /api/update-online-players", s.handleUpdateOnlinePlayers)
	mux.HandleFunc("POST /api/create-match", s.handleCreateMatch)
	mux.HandleFunc("POST /api/reset-match", s.handleResetMatch)
	mux.HandleFunc("POST /api/submit-match", s.handleSubmitMatch)
	mux.HandleFunc("POST /api/upload-screenshot", s.handleUploadScreenshot)
	mux.HandleFunc("GET /api/map-stats", s.handleMapStats)
	mux.HandleFunc("GET /api/records", s.handleRecords)
	mux.HandleFunc("GET /api/all-matches", s.handleAllMatches)
	mux.HandleFunc("GET /api/match-details/{num}", s.handleMatchDetails)
	mux.HandleFunc("GET /api/player-stats/{name}", s.handlePlayerStats)
	mux.HandleFunc("GET /api/elo-history/{name}", s.handleEloHistory)
	mux.HandleFunc("POST /api/reset-database", s.handleResetDatabase)
}

func (s *LadderServer) handleDatabase(w http.ResponseWriter, r *http.Request) {
	rows, err := s.leaderboardSvc.Leaderboard(r.Context())
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (s *LadderServer) handleUpdateOnlinePlayers(w http.ResponseWriter, r *http.Request) {
	online, err := s.presenceSvc.Refresh(r.Context())
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}
	top3, err := s.ratingSvc.TopThree(r.Context())
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":        true,
		"top_3":          top3,
		"online_players": online,
	})
}

type createMatchRequest struct {
	OnlinePlayers []string `json:"online_players"`
}

func (s *LadderServer) handleCreateMatch(w http.ResponseWriter, r *http.Request) {
	var req createMatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if _, active := s.matchmakerSvc.Current(); active {
		writeError(w, http.StatusConflict, "a match proposal is already active, reset it first")
		return
	}

	proposal, err := s.matchmakerSvc.ProposeMatch(r.Context(), req.OnlinePlayers)
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, proposal)
}

func (s *LadderServer) handleResetMatch(w http.ResponseWriter, r *http.Request) {
	s.matchmakerSvc.Clear()
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

type submitMatchRequest struct {
	Team1Result []service.PlayerResult `json:"team_1_result"`
	Team2Result []service.PlayerResult `json:"team_2_result"`
	T1Gain      *int                   `json:"t1_gain"`
	T2Gain      *int                   `json:"t2_gain"`
	WinTeam     string                 `json:"win_team"`
	Team1Score  int                    `json:"team1_score"`
	Team2Score  int                    `json:"team2_score"`
	Map         string                 `json:"map"`
}

func (s *LadderServer) handleSubmitMatch(w http.ResponseWriter, r *http.Request) {
	var req submitMatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	proposal, active := s.matchmakerSvc.Current()
	if !active {
		writeError(w, http.StatusBadRequest, "no active match proposal")
		return
	}
	if req.T1Gain != nil && *req.T1Gain != proposal.T1Gain ||
		req.T2Gain != nil && *req.T2Gain != proposal.T2Gain {
		writeError(w, http.StatusBadRequest, "submitted gains do not match the active proposal")
		return
	}

	top3, err := s.ratingSvc.ApplyResult(r.Context(), proposal,
		req.Team1Result, req.Team2Result, req.WinTeam, req.Team1Score, req.Team2Score, req.Map)
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}
	s.matchmakerSvc.Clear()

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"top_3":   top3,
	})
}

func (s *LadderServer) handleUploadScreenshot(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(constants.MaxUploadMB << 20); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	image, err := io.ReadAll(io.LimitReader(file, constants.MaxUploadMB<<20))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read upload")
		return
	}

	result, err := s.scanSvc.ScanScreenshot(r.Context(), image)
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}

	msg := "scoreboard parsed"
	if result.PlayersFound == 0 {
		msg = "no known players found in the screenshot"
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":          result.PlayersFound > 0,
		"players":          result.Players,
		"raw_text":         result.RawText,
		"total_text_lines": result.TotalTextLines,
		"players_found":    result.PlayersFound,
		"message":          msg,
	})
}

func (s *LadderServer) handleMapStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.historySvc.MapStats(r.Context())
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "maps": stats})
}

func (s *LadderServer) handleRecords(w http.ResponseWriter, r *http.Request) {
	records, err := s.recordsSvc.ComputeRecords(r.Context())
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "records": records})
}

func (s *LadderServer) handleAllMatches(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page", 1)
	pageSize := queryInt(r, "page_size", 0)

	matches, total, err := s.historySvc.AllMatches(r.Context(), page, pageSize)
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"matches": matches,
		"total":   total,
		"page":    page,
	})
}

func (s *LadderServer) handleMatchDetails(w http.ResponseWriter, r *http.Request) {
	num, err := strconv.Atoi(r.PathValue("num"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid match number")
		return
	}

	details, err := s.historySvc.MatchDetails(r.Context(), num)
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"match":       details.Match,
		"team1_stats": details.Team1Stats,
		"team2_stats": details.Team2Stats,
		"metadata":    details.Metadata,
	})
}

func (s *LadderServer) handlePlayerStats(w http.ResponseWriter, r *http.Request) {
	profile, err := s.profileSvc.Profile(r.Context(), r.PathValue("name"))
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (s *LadderServer) handleEloHistory(w http.ResponseWriter, r *http.Request) {
	history, err := s.profileSvc.EloTrend(r.Context(), r.PathValue("name"))
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "history": history})
}

func (s *LadderServer) handleResetDatabase(w http.ResponseWriter, r *http.Request) {
	if err := s.rosterSvc.Reset(r.Context()); err != nil {
		writeServiceError(w, s.logger, err)
		return
	}
	s.matchmakerSvc.Clear()
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "ladder reset to baseline",
	})
}

func queryInt(r *http.Request, key string, fallback int) int {
	if v := r.URL.Query().Get(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
