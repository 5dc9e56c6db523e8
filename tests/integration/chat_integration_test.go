package integration

import (
	"context"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/Windi-Fikriyansyah/joki-chat/chat"
	apiclient "github.com/Windi-Fikriyansyah/joki-chat/client"
	"github.com/Windi-Fikriyansyah/joki-chat/config"
	"github.com/Windi-Fikriyansyah/joki-chat/controllers"
	"github.com/Windi-Fikriyansyah/joki-chat/middleware"
	"github.com/Windi-Fikriyansyah/joki-chat/models"
	"github.com/Windi-Fikriyansyah/joki-chat/tests/testutil"
)

// ChatIntegrationTestSuite drives the real API client and conversation store
// against the real router over HTTP.
type ChatIntegrationTestSuite struct {
	suite.Suite
	db     *gorm.DB
	server *httptest.Server

	clientUser     models.User
	freelancerUser models.User
}

// SetupSuite runs once before all tests
func (suite *ChatIntegrationTestSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)
	testutil.MustSetTestEnvironment(suite.T())

	_, err := config.Load()
	suite.NoError(err)
}

// SetupTest runs before each test
func (suite *ChatIntegrationTestSuite) SetupTest() {
	suite.db = testutil.OpenMigratedDB(suite.T())
	config.SetDB(suite.db)
	middleware.ResetSessions()

	suite.clientUser = models.User{ID: "u-client", Name: "Windi", Email: "windi@example.com", Role: "client"}
	suite.freelancerUser = models.User{ID: "u-freelancer", Name: "Rizky", Email: "rizky@example.com", Role: "freelancer"}
	suite.NoError(suite.db.Create(&suite.clientUser).Error)
	suite.NoError(suite.db.Create(&suite.freelancerUser).Error)

	router := gin.New()
	v1 := router.Group("/api/v1")
	authed := v1.Group("")
	authed.Use(middleware.RequireSession())
	{
		authed.GET("/chat/conversations", controllers.ListConversations)
		authed.POST("/chat/conversations", controllers.CreateConversation)
		authed.GET("/chat/conversations/:id/messages", controllers.ListMessages)
		authed.POST("/chat/conversations/:id/messages", controllers.SendMessage)
		authed.GET("/chat/unread-count", controllers.UnreadCount)
		authed.POST("/job-offers/:id/review", controllers.SubmitReview)
		authed.GET("/me", controllers.Me)
		authed.PUT("/me", controllers.UpdateMe)
	}

	suite.server = httptest.NewServer(router)
}

// TearDownTest runs after each test
func (suite *ChatIntegrationTestSuite) TearDownTest() {
	suite.server.Close()
}

// sessionClient builds an API client whose cookie jar already carries a
// session for the given user.
func (suite *ChatIntegrationTestSuite) sessionClient(userID string) *apiclient.Client {
	token := middleware.IssueSession(userID)

	jar, err := cookiejar.New(nil)
	suite.NoError(err)
	serverURL, err := url.Parse(suite.server.URL)
	suite.NoError(err)
	jar.SetCookies(serverURL, []*http.Cookie{
		{Name: middleware.SessionCookie, Value: token, Path: "/"},
	})

	c, err := apiclient.New(suite.server.URL+"/api/v1",
		apiclient.WithHTTPClient(&http.Client{Jar: jar}),
		apiclient.WithTimeout(5*time.Second),
	)
	suite.NoError(err)
	return c
}

func (suite *ChatIntegrationTestSuite) TestConversationLifecycle() {
	ctx := context.Background()
	clientAPI := suite.sessionClient(suite.clientUser.ID)
	freelancerAPI := suite.sessionClient(suite.freelancerUser.ID)

	// Client starts the conversation and says hello
	conversation, err := clientAPI.CreateConversation(ctx, suite.freelancerUser.ID, nil)
	suite.NoError(err)
	suite.NotEmpty(conversation.ID)

	_, err = clientAPI.SendMessage(ctx, conversation.ID, "halo kak, bisa bantu tugas saya?")
	suite.NoError(err)

	// The freelancer sees one unread message
	count, err := freelancerAPI.UnreadCount(ctx)
	suite.NoError(err)
	suite.Equal(1, count)

	conversations, err := freelancerAPI.ListConversations(ctx)
	suite.NoError(err)
	suite.Len(conversations, 1)
	suite.Equal("halo kak, bisa bantu tugas saya?", conversations[0].LastMessagePreview)
	suite.Equal(int64(1), conversations[0].UnreadCount)

	// Opening the conversation marks it read
	messages, err := freelancerAPI.ListMessages(ctx, conversation.ID, 0)
	suite.NoError(err)
	suite.Len(messages, 1)

	count, err = freelancerAPI.UnreadCount(ctx)
	suite.NoError(err)
	suite.Zero(count)
}

func (suite *ChatIntegrationTestSuite) TestStoreReconcilesOptimisticSend() {
	ctx := context.Background()
	clientAPI := suite.sessionClient(suite.clientUser.ID)
	freelancerAPI := suite.sessionClient(suite.freelancerUser.ID)

	conversation, err := clientAPI.CreateConversation(ctx, suite.freelancerUser.ID, nil)
	suite.NoError(err)

	store := chat.NewStore(clientAPI, chat.NewUnreadBus())
	store.SetIdentity(suite.clientUser.ID)
	suite.NoError(store.Select(ctx, conversation.ID))

	// Optimistic send confirms to exactly one entry
	_, err = store.Send(ctx, conversation.ID, "ok, saya kirim detailnya")
	suite.NoError(err)

	transcript := store.Transcript(conversation.ID)
	suite.Len(transcript, 1)
	suite.False(transcript[0].ClientTemp)
	suite.True(store.IsOwn(transcript[0]))

	// The freelancer replies; the next refresh folds it in after the send
	_, err = freelancerAPI.SendMessage(ctx, conversation.ID, "siap, ditunggu")
	suite.NoError(err)
	suite.NoError(store.RefreshActive(ctx))

	transcript = store.Transcript(conversation.ID)
	suite.Len(transcript, 2)
	suite.Equal("ok, saya kirim detailnya", transcript[0].Text)
	suite.Equal("siap, ditunggu", transcript[1].Text)
	for i := 1; i < len(transcript); i++ {
		suite.True(transcript[i-1].Before(transcript[i]), "transcript must stay ordered")
	}
}

func (suite *ChatIntegrationTestSuite) TestReviewFlowEndToEnd() {
	ctx := context.Background()
	clientAPI := suite.sessionClient(suite.clientUser.ID)

	conversation, err := clientAPI.CreateConversation(ctx, suite.freelancerUser.ID, nil)
	suite.NoError(err)

	deliveredAt := time.Now()
	offer := models.JobOffer{
		ID:             "offer-1",
		ConversationID: conversation.ID,
		ClientID:       suite.clientUser.ID,
		FreelancerID:   suite.freelancerUser.ID,
		Status:         "delivered",
		DeliveredAt:    &deliveredAt,
	}
	suite.NoError(suite.db.Create(&offer).Error)

	var confirmed models.Review
	flow := chat.NewReviewFlow(clientAPI, func(r models.Review) { confirmed = r })

	// Missing rating is rejected before any request
	err = flow.Submit(ctx, offer.ID, 0, "bagus")
	suite.ErrorIs(err, chat.ErrRatingRequired)

	suite.NoError(flow.Submit(ctx, offer.ID, 5, "pengerjaan cepat"))
	suite.Equal(5, confirmed.Rating)

	// A second submission conflicts and leaves the flow retryable
	err = flow.Submit(ctx, offer.ID, 4, "")
	var apiErr *apiclient.APIError
	suite.ErrorAs(err, &apiErr)
	suite.Equal(http.StatusConflict, apiErr.StatusCode)
	suite.False(flow.InFlight())
}

func (suite *ChatIntegrationTestSuite) TestMissingSessionYieldsUnauthorized() {
	c, err := apiclient.New(suite.server.URL + "/api/v1")
	suite.NoError(err)

	_, err = c.ListConversations(context.Background())
	suite.ErrorIs(err, apiclient.ErrUnauthorized)
}

func (suite *ChatIntegrationTestSuite) TestProfileReadAndEdit() {
	ctx := context.Background()
	clientAPI := suite.sessionClient(suite.clientUser.ID)

	me, err := clientAPI.Me(ctx)
	suite.NoError(err)
	suite.Equal(suite.clientUser.Email, me.Email)

	updated, err := clientAPI.UpdateMe(ctx, "Windi Fikriyansyah", "")
	suite.NoError(err)
	suite.Equal("Windi Fikriyansyah", updated.Name)
	suite.Equal(suite.clientUser.Email, updated.Email)
}

// TestChatIntegrationTestSuite runs the suite
func TestChatIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(ChatIntegrationTestSuite))
}
