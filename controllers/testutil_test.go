package controllers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/podgen/podcast-generator-backend/config"
	"github.com/podgen/podcast-generator-backend/models"
	"github.com/podgen/podcast-generator-backend/routes"
	"github.com/podgen/podcast-generator-backend/storage"
	"github.com/podgen/podcast-generator-backend/utils"
)

type testEnv struct {
	db     *gorm.DB
	router *gin.Engine
	user   models.User
	token  string
}

// newTestEnv builds a router backed by an in-memory database with the gridfs
// blob backend, and one authenticated user.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret")

	// Keep external providers out of the picture regardless of the host env.
	for _, key := range []string{
		"GEMINI_API_KEY", "DOCAI_PROJECT_ID", "DOCAI_PROCESSOR_ID",
		"AZURE_SPEECH_KEY", "AZURE_SPEECH_REGION", "USE_GOOGLE_TTS",
		"ELEVENLABS_API_KEY", "RVC_SERVICE_URL", "TTS_STRICT_ERRORS",
	} {
		t.Setenv(key, "")
	}

	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, config.Migrate(db))

	storage.Register(storage.NewDatabaseStore(db))
	storage.SetDefault(storage.BackendGridFS)

	router := routes.SetupRouter(gin.New(), db)

	hashed, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)
	user := models.User{FullName: "Test User", Email: "test@example.com", Password: string(hashed)}
	require.NoError(t, db.Create(&user).Error)

	token, err := utils.GenerateToken(user.ID.String(), user.Email)
	require.NoError(t, err)

	return &testEnv{db: db, router: router, user: user, token: token}
}

// otherUser creates a second account for ownership tests.
func (e *testEnv) otherUser(t *testing.T) (models.User, string) {
	t.Helper()
	user := models.User{FullName: "Other User", Email: "other@example.com"}
	require.NoError(t, e.db.Create(&user).Error)
	token, err := utils.GenerateToken(user.ID.String(), user.Email)
	require.NoError(t, err)
	return user, token
}

func (e *testEnv) request(t *testing.T, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	contentType := ""
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
		contentType = "application/json"
	}

	req := httptest.NewRequest(method, path, reader)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

// upload sends a multipart request with one file field plus extra form fields.
func (e *testEnv) upload(t *testing.T, path, fieldName, filename string, content []byte, fields map[string]string, token string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	part, err := writer.CreateFormFile(fieldName, filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decodeJSON(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	return payload
}

// createDocument seeds a completed document owned by the given user.
func (e *testEnv) createDocument(t *testing.T, user models.User, text string) models.Document {
	t.Helper()
	doc := models.Document{
		UserID:        user.ID,
		Title:         "seeded",
		OriginalName:  "seeded.txt",
		FileType:      "txt",
		FileSize:      int64(len(text)),
		StorageType:   storage.BackendGridFS,
		ExtractedText: text,
		WordCount:     len(bytes.Fields([]byte(text))),
		Status:        models.StatusCompleted,
	}
	require.NoError(t, e.db.Create(&doc).Error)
	return doc
}
