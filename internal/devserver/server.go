// Package devserver is an in-memory stand-in for the simulation backend.
// It serves the same routes with canned narrative so the client can be
// exercised without the real service.
package devserver

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/lifesim-dev/lifesim/internal/api"
	"github.com/lifesim-dev/lifesim/internal/profile"
)

// Route names accepted by FailNext.
const (
	OpLogin      = "login"
	OpHistory    = "history"
	OpTemplates  = "templates"
	OpCreateTmpl = "template_create"
	OpGameStart  = "game_start"
	OpGameFetch  = "game_fetch"
	OpInit       = "init"
	OpProbes     = "probes"
	OpStart      = "start"
	OpNext       = "next"
	OpSkip       = "skip"
	OpLegacy     = "legacy"
)

const maxSkipYears = 10

// DefaultProbes are the questions handed out for every profile.
var DefaultProbes = []string{
	"What did you give up to get where you are now?",
	"Who would you call at 3 a.m. in a crisis?",
	"What would you do with a year of paid leave?",
}

// Server keeps users, profiles, games and templates in memory.
type Server struct {
	mu        sync.Mutex
	log       zerolog.Logger
	probes    []string
	users     map[string]*api.User // by phone
	profiles  map[profile.ID]*profile.Profile
	games     []*api.GameInstance
	templates []profile.Template
	nextUser  int64
	nextGame  int64
	nextTmpl  int64
	failures  map[string]int
	calls     map[string]int
}

// New creates an empty Server that logs requests to logger.
func New(logger zerolog.Logger) *Server {
	return &Server{
		log:      logger,
		probes:   append([]string(nil), DefaultProbes...),
		users:    make(map[string]*api.User),
		profiles: make(map[profile.ID]*profile.Profile),
		failures: make(map[string]int),
		calls:    make(map[string]int),
	}
}

// SetProbes replaces the probe list handed out by the probes route.
func (s *Server) SetProbes(probes []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.probes = append([]string(nil), probes...)
}

// FailNext makes the next call to route op answer with status.
func (s *Server) FailNext(op string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[op] = status
}

// Calls returns how many times route op has been hit.
func (s *Server) Calls(op string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[op]
}

// Profile returns a stored profile by id.
func (s *Server) Profile(id profile.ID) (profile.Profile, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[id]
	if !ok {
		return profile.Profile{}, false
	}
	return p.Clone(), true
}

// Handler returns the gin engine serving every backend route.
func (s *Server) Handler() http.Handler {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(s.requestLogger())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true, "time": time.Now().UTC()})
	})

	v1 := r.Group("/api/v1")
	v1.POST("/user/login", s.handleLogin)
	v1.GET("/user/:id/history", s.handleHistory)
	v1.GET("/user/:id/templates", s.handleTemplates)
	v1.POST("/template/create", s.handleCreateTemplate)
	v1.POST("/game/start", s.handleStartGame)
	v1.GET("/game/:id", s.handleGetGame)
	// /sim/init and /sim/probes share the position of the profile id.
	v1.POST("/sim/:id", s.handleSimCollection)
	v1.POST("/sim/:id/:action", s.handleSimAction)
	return r
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("dur", time.Since(start)).
			Msg("http")
	}
}

// enter counts the call and reports whether an injected failure was served.
func (s *Server) enter(c *gin.Context, op string) bool {
	s.mu.Lock()
	s.calls[op]++
	status, fail := s.failures[op]
	if fail {
		delete(s.failures, op)
	}
	s.mu.Unlock()

	if fail {
		c.JSON(status, gin.H{"error": "injected failure", "op": op})
		return true
	}
	return false
}

func (s *Server) handleLogin(c *gin.Context) {
	if s.enter(c, OpLogin) {
		return
	}
	var req struct {
		Phone string `json:"phone"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Phone == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "phone required"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[req.Phone]
	if !ok {
		s.nextUser++
		u = &api.User{
			ID:         profile.ID(strconv.FormatInt(s.nextUser, 10)),
			Phone:      req.Phone,
			CreateTime: time.Now().UTC().Format(time.RFC3339),
		}
		s.users[req.Phone] = u
	}
	c.JSON(http.StatusOK, u)
}

func (s *Server) handleHistory(c *gin.Context) {
	if s.enter(c, OpHistory) {
		return
	}
	userID := profile.ID(c.Param("id"))

	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]api.GameInstance, 0)
	for i := len(s.games) - 1; i >= 0; i-- {
		g := s.games[i]
		if g.UserID != userID {
			continue
		}
		copied := *g
		if p, ok := s.profiles[g.UserProfile.ID]; ok {
			clone := p.Clone()
			copied.UserProfile = &clone
		}
		out = append(out, copied)
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) handleTemplates(c *gin.Context) {
	if s.enter(c, OpTemplates) {
		return
	}
	userID := profile.ID(c.Param("id"))

	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]profile.Template, 0)
	for _, t := range s.templates {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) handleCreateTemplate(c *gin.Context) {
	if s.enter(c, OpCreateTmpl) {
		return
	}
	var p profile.Profile
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	t, err := profile.NewTemplate(p.BasicInfo.Name, p)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextTmpl++
	t.ID = profile.ID(strconv.FormatInt(s.nextTmpl, 10))
	t.UserID = profile.ID(c.Query("userId"))
	t.CreateTime = time.Now().UTC().Format(time.RFC3339)
	s.templates = append(s.templates, t)
	c.JSON(http.StatusOK, t)
}

func (s *Server) handleStartGame(c *gin.Context) {
	if s.enter(c, OpGameStart) {
		return
	}
	var p profile.Profile
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	stored := s.storeLocked(p)
	s.nextGame++
	g := &api.GameInstance{
		ID:             profile.ID(strconv.FormatInt(s.nextGame, 10)),
		UserID:         profile.ID(c.Query("userId")),
		TemplateID:     profile.ID(c.Query("templateId")),
		UserProfile:    stored,
		Status:         api.StatusActive,
		LastUpdateTime: time.Now().UTC().Format(time.RFC3339),
	}
	s.games = append(s.games, g)
	c.JSON(http.StatusOK, g)
}

func (s *Server) handleGetGame(c *gin.Context) {
	if s.enter(c, OpGameFetch) {
		return
	}
	id := profile.ID(c.Param("id"))

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, g := range s.games {
		if g.ID == id {
			copied := *g
			if p, ok := s.profiles[g.UserProfile.ID]; ok {
				clone := p.Clone()
				copied.UserProfile = &clone
			}
			c.JSON(http.StatusOK, copied)
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"error": "game not found"})
}

func (s *Server) handleSimCollection(c *gin.Context) {
	switch c.Param("id") {
	case "init":
		s.handleInit(c)
	case "probes":
		s.handleProbes(c)
	default:
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown route"})
	}
}

func (s *Server) handleInit(c *gin.Context) {
	if s.enter(c, OpInit) {
		return
	}
	var p profile.Profile
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	c.JSON(http.StatusOK, s.storeLocked(p))
}

func (s *Server) handleProbes(c *gin.Context) {
	if s.enter(c, OpProbes) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c.JSON(http.StatusOK, append([]string{}, s.probes...))
}

func (s *Server) handleSimAction(c *gin.Context) {
	id := profile.ID(c.Param("id"))
	switch c.Param("action") {
	case "start":
		s.handleStart(c, id)
	case "next":
		s.handleNext(c, id)
	case "skip":
		s.handleSkip(c, id)
	case "legacy":
		s.handleLegacy(c, id)
	default:
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown route"})
	}
}

func (s *Server) handleStart(c *gin.Context, id profile.ID) {
	if s.enter(c, OpStart) {
		return
	}
	var answers map[string]string
	if err := c.ShouldBindJSON(&answers); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[id]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "profile not found"})
		return
	}
	startYear(p, answers)
	c.JSON(http.StatusOK, p)
}

func (s *Server) handleNext(c *gin.Context, id profile.ID) {
	if s.enter(c, OpNext) {
		return
	}
	var req struct {
		Choice string `json:"choice"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Choice == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "choice required"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[id]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "profile not found"})
		return
	}
	advanceYear(p, req.Choice)
	c.JSON(http.StatusOK, p)
}

func (s *Server) handleSkip(c *gin.Context, id profile.ID) {
	if s.enter(c, OpSkip) {
		return
	}
	years, err := strconv.Atoi(c.Query("years"))
	if err != nil || years < 1 || years > maxSkipYears {
		c.JSON(http.StatusBadRequest, gin.H{"error": "years must be between 1 and 10"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[id]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "profile not found"})
		return
	}
	skipYears(p, years)
	c.JSON(http.StatusOK, p)
}

func (s *Server) handleLegacy(c *gin.Context, id profile.ID) {
	if s.enter(c, OpLegacy) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	parent, ok := s.profiles[id]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "profile not found"})
		return
	}
	heir := inherit(*parent)
	heir.ID = profile.ID(uuid.NewString())
	s.profiles[heir.ID] = &heir

	for _, g := range s.games {
		if g.UserProfile != nil && g.UserProfile.ID == parent.ID {
			g.Status = api.StatusFinished
		}
	}
	c.JSON(http.StatusOK, heir)
}

// storeLocked saves p, assigning an id if it has none.
func (s *Server) storeLocked(p profile.Profile) *profile.Profile {
	if p.ID == "" {
		p.ID = profile.ID(uuid.NewString())
	}
	if existing, ok := s.profiles[p.ID]; ok && existing.CurrentAge > 0 {
		// Keep simulation progress when a running profile is re-sent.
		p.CurrentAge = existing.CurrentAge
		p.CurrentScenario = existing.CurrentScenario
		p.AvailableChoices = existing.AvailableChoices
		p.LifeHistory = existing.LifeHistory
	}
	if p.Generation == 0 {
		p.Generation = 1
	}
	stored := p.Clone()
	s.profiles[p.ID] = &stored
	return &stored
}
