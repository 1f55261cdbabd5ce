package controllers_test

import (
	"os"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestMain(m *testing.M) {
	os.Setenv("SESSION_SECRET", "controller-test-secret")
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}
