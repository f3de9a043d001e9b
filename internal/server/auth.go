package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	accountdomain "github.com/smallbiznis/entitle/internal/account/domain"
)

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type loginResponse struct {
	Token      string    `json:"token"`
	ExpiresAt  time.Time `json:"expiresAt"`
	Role       string    `json:"role"`
	CustomerID string    `json:"customerId,omitempty"`
}

func (s *Server) AdminLogin(c *gin.Context) {
	s.login(c, accountdomain.RoleAdmin)
}

func (s *Server) CustomerLogin(c *gin.Context) {
	s.login(c, accountdomain.RoleCustomer)
}

func (s *Server) login(c *gin.Context, role accountdomain.Role) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	result, err := s.accountSvc.Login(c.Request.Context(), accountdomain.LoginRequest{
		Email:    req.Email,
		Password: req.Password,
		Role:     role,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, toLoginResponse(result, role))
}

func (s *Server) Signup(c *gin.Context) {
	var req accountdomain.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	result, err := s.accountSvc.Signup(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toLoginResponse(result, accountdomain.RoleCustomer))
}

// SDKLogin exchanges customer credentials for a long-lived API key. Any
// previous key for the customer stops working.
func (s *Server) SDKLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	result, err := s.accountSvc.Login(c.Request.Context(), accountdomain.LoginRequest{
		Email:    req.Email,
		Password: req.Password,
		Role:     accountdomain.RoleCustomer,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	secret, err := s.apiKeySvc.IssueForCustomer(c.Request.Context(), result.Principal.CustomerID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"apiKey":     secret.APIKey,
		"customerId": result.Principal.CustomerID.String(),
	})
}

func toLoginResponse(result accountdomain.LoginResult, role accountdomain.Role) loginResponse {
	resp := loginResponse{
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt,
		Role:      string(role),
	}
	if result.Principal.IsCustomer() {
		resp.CustomerID = result.Principal.CustomerID.String()
	}
	return resp
}
