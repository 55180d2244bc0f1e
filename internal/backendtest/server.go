// Package backendtest runs an in-memory events backend speaking the same
// HTTP/JSON protocol as the real service. It exists for tests only.
package backendtest

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
)

// Password is the password of every seeded user.
const Password = "password123"

type user struct {
	ID       int    `json:"id"`
	FullName string `json:"fullName"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Role     string `json:"role,omitempty"`
	password string
}

type event struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	Date         string `json:"date"`
	Location     string `json:"location"`
	Organizer    user   `json:"organizer"`
	Attendees    []int  `json:"attendees"`
	MaxAttendees int    `json:"maxAttendees"`
}

type eventRequest struct {
	Title        string `json:"title" binding:"required"`
	Description  string `json:"description"`
	Date         string `json:"date" binding:"required"`
	Location     string `json:"location"`
	MaxAttendees int    `json:"maxAttendees" binding:"required,min=1"`
	OrganizerID  string `json:"organizerId"`
}

type registerRequest struct {
	FullName string `json:"fullName" binding:"required"`
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Phone    string `json:"phone"`
	Password string `json:"password" binding:"required"`
}

type attendanceRequest struct {
	UserID string `json:"userId" binding:"required"`
}

// Server is the fake backend. Its handlers are safe for concurrent use.
type Server struct {
	mu       sync.Mutex
	users    []*user
	events   []*event
	nextUser int
	nextEvt  int
	requests atomic.Int64
	engine   *gin.Engine
}

// New returns a server seeded with the demo users and events.
func New() *Server {
	gin.SetMode(gin.TestMode)
	s := &Server{nextUser: 1, nextEvt: 1}
	s.seed()

	r := gin.New()
	r.Use(gin.Recovery(), s.count)
	api := r.Group("/api")
	api.GET("/login", s.login)
	api.POST("/register", s.register)

	authorized := api.Group("/events")
	authorized.Use(s.basicAuth)
	{
		authorized.GET("", s.listEvents)
		authorized.POST("", s.createEvent)
		authorized.PUT("/:id", s.updateEvent)
		authorized.DELETE("/:id", s.deleteEvent)
		authorized.POST("/:id/join", s.joinEvent)
		authorized.POST("/:id/leave", s.leaveEvent)
	}
	s.engine = r
	return s
}

// Start serves a new seeded backend and returns it with the API base URL.
func Start(t testing.TB) (*Server, string) {
	t.Helper()
	s := New()
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return s, ts.URL + "/api"
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

// Requests returns how many requests reached the server.
func (s *Server) Requests() int {
	return int(s.requests.Load())
}

// SeedEvent adds an event with a raw attendee list, duplicates included, and returns its id.
func (s *Server) SeedEvent(title, date string, organizerID int, attendees []int, maxAttendees int) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	org := s.userByID(organizerID)
	if org == nil {
		panic(fmt.Sprintf("backendtest: unknown organizer %d", organizerID))
	}
	ev := &event{
		ID:           s.newEventID(),
		Title:        title,
		Description:  title,
		Date:         date,
		Location:     "Gijón",
		Organizer:    *org,
		Attendees:    append([]int{}, attendees...),
		MaxAttendees: maxAttendees,
	}
	s.events = append(s.events, ev)
	return ev.ID
}

func (s *Server) seed() {
	for _, u := range []user{
		{FullName: "Admin User", Username: "admin", Email: "admin@email.com", Phone: "600000001", Role: "ROLE_ADMIN"},
		{FullName: "María González", Username: "maria", Email: "maria@email.com", Phone: "600000002", Role: "ROLE_USER"},
		{FullName: "Club Atletismo Asturias", Username: "club", Email: "club@email.com", Phone: "600000003", Role: "ROLE_USER"},
		{FullName: "Asociación de Restaurantes", Username: "restaurantes", Email: "restaurantes@email.com", Phone: "600000004", Role: "ROLE_USER"},
	} {
		u := u
		u.ID = s.nextUser
		u.password = Password
		s.nextUser++
		s.users = append(s.users, &u)
	}

	s.events = []*event{
		{
			ID:           s.newEventID(),
			Title:        "Concierto de Jazz en el Puerto",
			Description:  "Disfruta de una velada de jazz con vistas al mar. Artistas locales e internacionales.",
			Date:         "2030-11-15T21:00:00",
			Location:     "Puerto Deportivo de Gijón",
			Organizer:    *s.users[1],
			Attendees:    []int{1, 3},
			MaxAttendees: 150,
		},
		{
			ID:           s.newEventID(),
			Title:        "Maratón de Gijón",
			Description:  "Carrera anual por las calles de Gijón. Incluye categorías de 5K, 10K y maratón completa.",
			Date:         "2030-11-20T09:00:00",
			Location:     "Plaza Mayor - Salida",
			Organizer:    *s.users[2],
			Attendees:    []int{1, 2, 4},
			MaxAttendees: 500,
		},
		{
			ID:           s.newEventID(),
			Title:        "Festival de Gastronomía Asturiana",
			Description:  "Degustación de productos locales, sidra y platos típicos de la región.",
			Date:         "2030-10-25T12:00:00",
			Location:     "Parque de Begoña",
			Organizer:    *s.users[3],
			Attendees:    []int{},
			MaxAttendees: 300,
		},
	}
}

func (s *Server) count(c *gin.Context) {
	s.requests.Add(1)
	c.Next()
}

func jsonError(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"message": msg})
}

func (s *Server) authenticate(c *gin.Context) *user {
	username, password, ok := c.Request.BasicAuth()
	if !ok {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == username && u.password == password {
			cp := *u
			return &cp
		}
	}
	return nil
}

func (s *Server) basicAuth(c *gin.Context) {
	u := s.authenticate(c)
	if u == nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	c.Set("user", u)
	c.Next()
}

func currentUser(c *gin.Context) *user {
	return c.MustGet("user").(*user)
}

func (s *Server) login(c *gin.Context) {
	u := s.authenticate(c)
	if u == nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Bad credentials"})
		return
	}
	c.JSON(http.StatusOK, u)
}

func (s *Server) register(c *gin.Context) {
	var body registerRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		jsonError(c, http.StatusBadRequest, "Datos de registro no válidos.")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Username, body.Username) {
			jsonError(c, http.StatusConflict, "El nombre de usuario ya está en uso.")
			return
		}
		if strings.EqualFold(u.Email, body.Email) {
			jsonError(c, http.StatusConflict, "El email ya está en uso.")
			return
		}
	}
	u := &user{
		ID:       s.nextUser,
		FullName: body.FullName,
		Username: body.Username,
		Email:    body.Email,
		Phone:    body.Phone,
		password: body.Password,
	}
	s.nextUser++
	s.users = append(s.users, u)

	// Registration answers without a role.
	c.JSON(http.StatusCreated, u)
}

func (s *Server) listEvents(c *gin.Context) {
	filter := strings.ToUpper(c.DefaultQuery("filter", "ALL"))
	userID, _ := strconv.Atoi(c.Query("userId"))

	s.mu.Lock()
	out := make([]event, 0, len(s.events))
	for _, ev := range s.events {
		switch filter {
		case "ATTENDING":
			if !containsID(ev.Attendees, userID) {
				continue
			}
		case "ORGANIZED":
			if ev.Organizer.ID != userID {
				continue
			}
		}
		cp := *ev
		cp.Attendees = append([]int{}, ev.Attendees...)
		out = append(out, cp)
	}
	s.mu.Unlock()

	sort.SliceStable(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	c.JSON(http.StatusOK, out)
}

func (s *Server) createEvent(c *gin.Context) {
	var body eventRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		jsonError(c, http.StatusBadRequest, "Datos del evento no válidos.")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	org := currentUser(c)
	if body.OrganizerID != "" {
		id, err := strconv.Atoi(body.OrganizerID)
		if err != nil || s.userByID(id) == nil {
			jsonError(c, http.StatusBadRequest, "Organizador no válido.")
			return
		}
		org = s.userByID(id)
	}
	ev := &event{
		ID:           s.newEventID(),
		Title:        body.Title,
		Description:  body.Description,
		Date:         body.Date,
		Location:     body.Location,
		Organizer:    *org,
		Attendees:    []int{},
		MaxAttendees: body.MaxAttendees,
	}
	s.events = append(s.events, ev)
	c.JSON(http.StatusCreated, ev)
}

func (s *Server) updateEvent(c *gin.Context) {
	var body eventRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		jsonError(c, http.StatusBadRequest, "Datos del evento no válidos.")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	ev := s.eventByID(c.Param("id"))
	if ev == nil {
		jsonError(c, http.StatusNotFound, "Evento no encontrado.")
		return
	}
	if !canManage(currentUser(c), ev) {
		jsonError(c, http.StatusForbidden, "Solo el organizador puede modificar el evento.")
		return
	}
	ev.Title = body.Title
	ev.Description = body.Description
	ev.Date = body.Date
	ev.Location = body.Location
	ev.MaxAttendees = body.MaxAttendees
	c.JSON(http.StatusOK, ev)
}

func (s *Server) deleteEvent(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := c.Param("id")
	ev := s.eventByID(id)
	if ev == nil {
		jsonError(c, http.StatusNotFound, "Evento no encontrado.")
		return
	}
	if !canManage(currentUser(c), ev) {
		jsonError(c, http.StatusForbidden, "Solo el organizador puede eliminar el evento.")
		return
	}
	kept := s.events[:0]
	for _, e := range s.events {
		if e.ID != id {
			kept = append(kept, e)
		}
	}
	s.events = kept
	c.Status(http.StatusNoContent)
}

func (s *Server) joinEvent(c *gin.Context) {
	s.attendance(c, func(ev *event, uid int) bool {
		if containsID(ev.Attendees, uid) {
			return true
		}
		if len(ev.Attendees) >= ev.MaxAttendees {
			jsonError(c, http.StatusConflict, "El evento está completo.")
			return false
		}
		ev.Attendees = append(ev.Attendees, uid)
		return true
	})
}

func (s *Server) leaveEvent(c *gin.Context) {
	s.attendance(c, func(ev *event, uid int) bool {
		kept := ev.Attendees[:0]
		for _, id := range ev.Attendees {
			if id != uid {
				kept = append(kept, id)
			}
		}
		ev.Attendees = kept
		return true
	})
}

func (s *Server) attendance(c *gin.Context, apply func(ev *event, uid int) bool) {
	var body attendanceRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		jsonError(c, http.StatusBadRequest, "Falta el usuario.")
		return
	}
	uid, err := strconv.Atoi(body.UserID)
	if err != nil {
		jsonError(c, http.StatusBadRequest, "Usuario no válido.")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	ev := s.eventByID(c.Param("id"))
	if ev == nil {
		jsonError(c, http.StatusNotFound, "Evento no encontrado.")
		return
	}
	if s.userByID(uid) == nil {
		jsonError(c, http.StatusNotFound, "Usuario no encontrado.")
		return
	}
	if apply(ev, uid) {
		c.Status(http.StatusNoContent)
	}
}

func canManage(u *user, ev *event) bool {
	return u.ID == ev.Organizer.ID || u.Role == "ROLE_ADMIN"
}

func (s *Server) newEventID() string {
	id := fmt.Sprintf("evt%d", s.nextEvt)
	s.nextEvt++
	return id
}

func (s *Server) userByID(id int) *user {
	for _, u := range s.users {
		if u.ID == id {
			return u
		}
	}
	return nil
}

func (s *Server) eventByID(id string) *event {
	for _, ev := range s.events {
		if ev.ID == id {
			return ev
		}
	}
	return nil
}

func containsID(ids []int, id int) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
