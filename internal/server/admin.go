package server

import (
	"net/http"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	accountdomain "github.com/smallbiznis/entitle/internal/account/domain"
	customerdomain "github.com/smallbiznis/entitle/internal/customer/domain"
)

func (s *Server) Dashboard(c *gin.Context) {
	stats, err := s.subscriptionSvc.Stats(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

type createCustomerRequest struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"required"`
	Phone string `json:"phone"`
	// Password provisions a console login for the customer. Optional;
	// without it the customer exists only as a profile.
	Password string `json:"password"`
}

func (s *Server) CreateCustomer(c *gin.Context) {
	var req createCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	customer, err := s.customerSvc.Create(c.Request.Context(), customerdomain.CreateCustomerRequest{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if strings.TrimSpace(req.Password) != "" {
		if _, err := s.accountSvc.CreateAccount(c.Request.Context(), accountdomain.CreateAccountRequest{
			Email:      customer.Email,
			Password:   req.Password,
			Role:       accountdomain.RoleCustomer,
			CustomerID: customer.ID,
		}); err != nil {
			AbortWithError(c, err)
			return
		}
	}

	c.JSON(http.StatusCreated, customer)
}

func (s *Server) GetCustomer(c *gin.Context) {
	id, err := customerIDParam(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	customer, err := s.customerSvc.Get(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, customer)
}

func (s *Server) UpdateCustomer(c *gin.Context) {
	id, err := customerIDParam(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req customerdomain.UpdateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	req.ID = id

	customer, err := s.customerSvc.Update(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, customer)
}

func (s *Server) DeactivateCustomer(c *gin.Context) {
	id, err := customerIDParam(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if err := s.customerSvc.Deactivate(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (s *Server) ListCustomers(c *gin.Context) {
	var req customerdomain.ListCustomerRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.customerSvc.List(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func customerIDParam(c *gin.Context) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(c.Param("id")))
	if err != nil || id == 0 {
		return 0, ErrInvalidRequest
	}
	return id, nil
}
