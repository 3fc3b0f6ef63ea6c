package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/khalidIbrahima/kstores-sub002/internal/config"
	"github.com/khalidIbrahima/kstores-sub002/internal/diagnostics"
	"github.com/khalidIbrahima/kstores-sub002/internal/history"
	"github.com/khalidIbrahima/kstores-sub002/internal/metrics"
	"github.com/khalidIbrahima/kstores-sub002/internal/models"
	"github.com/khalidIbrahima/kstores-sub002/internal/notifier"
	"github.com/khalidIbrahima/kstores-sub002/internal/queue"
	"github.com/khalidIbrahima/kstores-sub002/internal/senders"
	"github.com/khalidIbrahima/kstores-sub002/internal/store"
	"github.com/khalidIbrahima/kstores-sub002/internal/utils"
)

const (
	rateLimitPerMinute = 20
	rateLimitWindow    = time.Minute
)

var logger = utils.NewLogger()

func main() {
	cfg := config.Load(logger)

	// --- Database Connection ---
	st, err := store.Open(cfg.DatabaseDSN)
	utils.FailOnError(logger, err, "Failed to connect to database")

	// --- RabbitMQ Connection ---
	q, err := queue.Connect(cfg.AMQPURL)
	utils.FailOnError(logger, err, "Failed to connect to RabbitMQ")
	defer q.Close()

	// --- Redis Connection ---
	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})

	// The API wires a synchronous notifier only for the diagnostics
	// harness; production fan-outs run in the worker.
	emailSender := senders.NewSMTPEmailSender(cfg, logger)
	waSender := senders.NewTwilioWhatsAppSender(cfg, logger)
	n := notifier.New(emailSender, waSender, st, cfg.ChannelTimeout, logger)
	reader := history.NewReader(st, logger)
	harness := diagnostics.NewHarness(st, n, waSender, cfg.AdminPhone, logger)

	// --- Gin Router ---
	router := gin.Default()
	router.Use(cors.Default())
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/v1")
	{
		v1.POST("/orders", rateLimiter(redisClient), createOrderHandler(st, q))
		v1.POST("/orders/:id/status", rateLimiter(redisClient), updateStatusHandler(st, q))
		v1.GET("/orders/:id/notifications", historyHandler(reader))

		// Admin diagnostics; access control sits in front of this service.
		admin := v1.Group("/admin")
		{
			admin.POST("/diagnostics/connection", connectionTestHandler(harness))
			admin.POST("/diagnostics/orders/:id/notify", debugOrderHandler(harness))
			admin.POST("/diagnostics/messages", directMessageHandler(harness))
		}
	}

	logger.Info("API service running", "addr", cfg.HTTPAddr)
	router.Run(cfg.HTTPAddr)
}

// createOrderHandler records a completed checkout and queues the
// order-received fan-out.
func createOrderHandler(st *store.Store, q *queue.Queue) gin.HandlerFunc {
	return func(c *gin.Context) {
		var order models.Order
		if err := c.ShouldBindJSON(&order); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}
		if order.ID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Order id is required"})
			return
		}
		if order.Status == "" {
			order.Status = models.StatusPending
		}

		if err := st.CreateOrder(c.Request.Context(), &order); err != nil {
			logger.Error("Failed to create order", "order_id", order.ID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create order"})
			return
		}

		queued := publishChange(c.Request.Context(), q, models.StatusChangeMessage{
			OrderID:   order.ID,
			NewStatus: order.Status,
		})
		c.JSON(http.StatusCreated, gin.H{"order_id": order.ID, "notification_queued": queued})
	}
}

// updateStatusHandler mutates the order status, then queues the fan-out.
// The mutation's outcome is reported independently of notification
// delivery: a queue failure never turns a successful update into an error.
func updateStatusHandler(st *store.Store, q *queue.Queue) gin.HandlerFunc {
	return func(c *gin.Context) {
		var request struct {
			Status string `json:"status" binding:"required"`
		}
		if err := c.ShouldBindJSON(&request); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}

		id := c.Param("id")
		order, err := st.GetOrder(c.Request.Context(), id)
		if err != nil {
			logger.Error("Failed to load order", "order_id", id, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load order"})
			return
		}
		if order == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
			return
		}
		if order.Status == request.Status {
			c.JSON(http.StatusOK, gin.H{"status": "unchanged", "notification_queued": false})
			return
		}

		if err := st.UpdateOrderStatus(c.Request.Context(), id, request.Status); err != nil {
			logger.Error("Failed to update order status", "order_id", id, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update status"})
			return
		}

		queued := publishChange(c.Request.Context(), q, models.StatusChangeMessage{
			OrderID:        id,
			NewStatus:      request.Status,
			PreviousStatus: order.Status,
		})
		c.JSON(http.StatusOK, gin.H{"status": "updated", "notification_queued": queued})
	}
}

func publishChange(ctx context.Context, q *queue.Queue, msg models.StatusChangeMessage) bool {
	if err := q.PublishStatusChange(ctx, msg); err != nil {
		logger.Error("Failed to queue status change", "order_id", msg.OrderID, "error", err)
		return false
	}
	metrics.StatusChangesPublished.Inc()
	return true
}

func historyHandler(reader *history.Reader) gin.HandlerFunc {
	return func(c *gin.Context) {
		events := reader.History(c.Request.Context(), c.Param("id"))
		c.JSON(http.StatusOK, gin.H{"notifications": events})
	}
}

func connectionTestHandler(h *diagnostics.Harness) gin.HandlerFunc {
	return func(c *gin.Context) {
		result := h.TestConnection(c.Request.Context())
		code := http.StatusOK
		if !result.Success {
			code = http.StatusBadGateway
		}
		c.JSON(code, result)
	}
}

func debugOrderHandler(h *diagnostics.Harness) gin.HandlerFunc {
	return func(c *gin.Context) {
		result, err := h.DebugOrder(c.Request.Context(), c.Param("id"))
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

func directMessageHandler(h *diagnostics.Harness) gin.HandlerFunc {
	return func(c *gin.Context) {
		var request struct {
			To   string `json:"to" binding:"required"`
			Body string `json:"body" binding:"required"`
		}
		if err := c.ShouldBindJSON(&request); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}
		if err := h.SendDirect(c.Request.Context(), request.To, request.Body); err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"success": false, "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}

// rateLimiter middleware for rate limiting mutating routes.
func rateLimiter(redisClient *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := context.Background()
		key := "ratelimit:" + c.ClientIP()

		count, err := redisClient.Incr(ctx, key).Result()
		if err != nil {
			logger.Error("Could not increment rate limit key", "error", err)
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}

		if count == 1 {
			redisClient.Expire(ctx, key, rateLimitWindow)
		}

		if count > rateLimitPerMinute {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Too Many Requests"})
			return
		}

		c.Next()
	}
}
