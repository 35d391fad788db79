package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/kickoffhq/clubpush/internal/auth"
	"github.com/kickoffhq/clubpush/internal/domain/attendance"
	"github.com/kickoffhq/clubpush/internal/domain/subscription"
	attsvc "github.com/kickoffhq/clubpush/internal/services/attendance"
)

// Server wires the REST surface. All routes sit behind the JWT middleware;
// the broadcast and attendance routes additionally require the admin role.
type Server struct {
	UC         *Usecase
	Attendance *attsvc.Usecase
	Auth       *auth.Manager
	VAPIDKey   string
	Log        *zap.Logger
}

func (s *Server) Handler() http.Handler {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	v1 := r.Group("/api/v1", auth.Middleware(s.Auth))
	{
		v1.GET("/me", s.profile)
		v1.GET("/push/vapid-key", s.vapidKey)

		v1.GET("/subscriptions", s.listSubscriptions)
		v1.POST("/subscriptions", s.saveSubscription)
		v1.DELETE("/subscriptions", s.removeSubscriptions)

		v1.GET("/preferences/push", s.getPreference)
		v1.PUT("/preferences/push", s.setPreference)

		v1.GET("/notifications", s.listNotifications)

		admin := v1.Group("", auth.RequireAdmin())
		{
			admin.POST("/notifications/broadcast", s.broadcast)
			admin.GET("/attendance/summary", s.attendanceSummary)
		}
	}

	return otelhttp.NewHandler(r, "api")
}

func (s *Server) profile(c *gin.Context) {
	claims := auth.FromContext(c)
	m, err := s.UC.Profile(c.Request.Context(), claims.MemberID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "member not found"})
		return
	}
	c.JSON(http.StatusOK, m)
}

func (s *Server) vapidKey(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"public_key": s.VAPIDKey})
}

type subscriptionReq struct {
	DeviceID   string `json:"device_id" binding:"required"`
	DeviceType string `json:"device_type" binding:"required"`
	Token      string `json:"token"`
	Endpoint   string `json:"endpoint"`
	P256dh     string `json:"p256dh"`
	Auth       string `json:"auth"`
	DeviceName string `json:"device_name"`
}

func (s *Server) saveSubscription(c *gin.Context) {
	var req subscriptionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	claims := auth.FromContext(c)
	sub := &subscription.Subscription{
		MemberID:   claims.MemberID,
		DeviceID:   req.DeviceID,
		DeviceType: req.DeviceType,
		Token:      req.Token,
		Endpoint:   req.Endpoint,
		P256dh:     req.P256dh,
		Auth:       req.Auth,
		DeviceName: req.DeviceName,
	}
	if err := s.UC.SaveSubscription(c.Request.Context(), sub); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, sub)
}

func (s *Server) listSubscriptions(c *gin.Context) {
	claims := auth.FromContext(c)
	subs, err := s.UC.ListSubscriptions(c.Request.Context(), claims.MemberID)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"subscriptions": subs})
}

func (s *Server) removeSubscriptions(c *gin.Context) {
	claims := auth.FromContext(c)
	if err := s.UC.RemoveSubscriptions(c.Request.Context(), claims.MemberID); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) getPreference(c *gin.Context) {
	claims := auth.FromContext(c)
	pref, err := s.UC.GetPreference(c.Request.Context(), claims.MemberID)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, pref)
}

type preferenceReq struct {
	Enabled *bool `json:"enabled" binding:"required"`
}

func (s *Server) setPreference(c *gin.Context) {
	var req preferenceReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	claims := auth.FromContext(c)
	pref, err := s.UC.SetPreference(c.Request.Context(), claims.MemberID, *req.Enabled)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, pref)
}

func (s *Server) listNotifications(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	entries, err := s.UC.RecentHistory(c.Request.Context(), limit)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": entries})
}

type broadcastReq struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	Sport string `json:"sport"`
}

func (s *Server) broadcast(c *gin.Context) {
	var req broadcastReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.UC.Broadcast(c.Request.Context(), req.Title, req.Body, req.Sport); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "queued"})
}

func (s *Server) attendanceSummary(c *gin.Context) {
	period := c.DefaultQuery("period", attendance.PeriodMonth)
	sport := c.Query("sport")
	if !attendance.ValidPeriod(period) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "period must be month or year"})
		return
	}

	report, err := s.Attendance.Report(c.Request.Context(), period, sport)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (s *Server) fail(c *gin.Context, err error) {
	if errors.Is(err, ErrValidation) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s.Log.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}
