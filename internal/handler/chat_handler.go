package handler

import (
	"net/http"

	"github.com/BekzhanK1/fms-server/internal/chat"
	"github.com/BekzhanK1/fms-server/internal/config"
	"github.com/BekzhanK1/fms-server/internal/logger"
	"github.com/BekzhanK1/fms-server/internal/middleware"
	"github.com/BekzhanK1/fms-server/internal/repository"
	"github.com/BekzhanK1/fms-server/internal/usecase"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// チャットのHTTP（履歴・ルーム一覧）とWebSocket入口
type ChatHandler struct {
	uc       *usecase.ChatUsecase
	hub      *chat.Hub
	roomRepo repository.RoomRepository
	msgRepo  repository.MessageRepository
	userRepo repository.UserRepository
	upgrader websocket.Upgrader
	secret   string
}

func NewChatHandler(
	uc *usecase.ChatUsecase,
	hub *chat.Hub,
	roomRepo repository.RoomRepository,
	msgRepo repository.MessageRepository,
	userRepo repository.UserRepository,
	cfg config.Config,
) *ChatHandler {
	return &ChatHandler{
		uc:       uc,
		hub:      hub,
		roomRepo: roomRepo,
		msgRepo:  msgRepo,
		userRepo: userRepo,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				if cfg.FEURL == "" {
					return true
				}
				return r.Header.Get("Origin") == cfg.FEURL
			},
		},
		secret: cfg.JWTSecret,
	}
}

func (h *ChatHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	g := e.Group("/chat")
	g.Use(middleware.AuthJWT(cfg))
	g.GET("/rooms", h.listRooms)
	g.GET("/history/:room", h.history)

	// WebSocketはヘッダを付けられないクライアントがあるためクエリでトークンを受ける
	e.GET("/ws/chat/:room", h.serveWS)
}

func (h *ChatHandler) listRooms(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	out, err := h.uc.ListRooms(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *ChatHandler) history(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	out, err := h.uc.History(c.Request().Context(), userID, c.Param("room"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// serveWS は接続前の検証をすべて済ませてからアップグレードする。
// 理由を漏らさないため、どの検証に失敗しても同じ拒否を返す。
func (h *ChatHandler) serveWS(c echo.Context) error {
	ctx := c.Request().Context()

	// 拒否はボディ無しで終端する
	refuse := func() error {
		return c.NoContent(http.StatusForbidden)
	}

	token := c.QueryParam("token")
	if token == "" {
		return refuse()
	}
	userID, _, err := middleware.ParseToken(h.secret, token)
	if err != nil {
		return refuse()
	}

	key, user1, user2, ok := chat.CanonicalRoomKey(c.Param("room"))
	if !ok {
		return refuse()
	}
	if !chat.IsParticipant(userID, user1, user2) {
		return refuse()
	}

	// 両参加者が実在するルームのみ
	for _, id := range []int64{user1, user2} {
		exists, err := h.userRepo.ExistsByID(ctx, id)
		if err != nil || !exists {
			return refuse()
		}
	}

	room, err := h.roomRepo.GetOrCreateByName(ctx, key, user1, user2)
	if err != nil {
		return refuse()
	}

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// Upgradeは自分でレスポンスを書く
		return nil
	}

	logger.L().Debug("websocket connected",
		zap.Int64("user_id", userID),
		zap.String("room", key),
	)

	// Run冒頭のJoinまでの間はハブ未登録なので、その間の配信はこの接続に届かない
	s := chat.NewSession(h.hub, h.msgRepo, conn, userID, key, room.ID)
	s.Run(ctx)
	return nil
}
