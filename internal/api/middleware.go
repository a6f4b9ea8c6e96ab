package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"cleoaura/careteam-app/internal/access"
	"cleoaura/careteam-app/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
)

// Constants for context keys
const (
	ContextUserIDKey    = "userID"
	ContextUserRoleKey  = "userRole"
	ContextUserEmailKey = "userEmail"
)

// jwtClaims defines the structure we expect in the JWT payload.
// Mirroring the structure used in authService.generateJWT
type jwtClaims struct {
	UserID string      `json:"uid"`
	Role   domain.Role `json:"role"`
	Email  string      `json:"email"`
	jwt.RegisteredClaims
}

// AuthMiddleware creates a Gin middleware for JWT authentication.
func AuthMiddleware(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortWithError(c, http.StatusUnauthorized, "Authorization header is missing")
			return
		}

		// Expecting "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			abortWithError(c, http.StatusUnauthorized, "Authorization header format must be Bearer {token}")
			return
		}
		tokenString := parts[1]

		claims := &jwtClaims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(jwtSecret), nil
		})

		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				abortWithError(c, http.StatusUnauthorized, "Token has expired")
			} else {
				abortWithError(c, http.StatusUnauthorized, fmt.Sprintf("Invalid token: %v", err))
			}
			return
		}

		if !token.Valid || claims.UserID == "" || claims.Role == "" {
			abortWithError(c, http.StatusUnauthorized, "Invalid token or missing claims")
			return
		}

		// Set user information in the context for downstream handlers
		c.Set(ContextUserIDKey, claims.UserID)
		c.Set(ContextUserRoleKey, claims.Role)
		c.Set(ContextUserEmailKey, claims.Email)

		c.Next()
	}
}

// Helper to return JSON error response and abort request
func abortWithError(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, gin.H{"error": message})
}

// RoleMiddleware creates middleware to check if user has the required role(s).
// Must run AFTER AuthMiddleware.
func RoleMiddleware(allowedRoles ...domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		roleRaw, exists := c.Get(ContextUserRoleKey)
		if !exists {
			abortWithError(c, http.StatusInternalServerError, "User role not found in context")
			return
		}

		userRole, ok := roleRaw.(domain.Role)
		if !ok {
			abortWithError(c, http.StatusInternalServerError, "Invalid user role type in context")
			return
		}

		allowed := false
		for _, allowedRole := range allowedRoles {
			if userRole == allowedRole {
				allowed = true
				break
			}
		}

		if !allowed {
			abortWithError(c, http.StatusForbidden, fmt.Sprintf("Access denied: Role '%s' does not have permission", userRole))
			return
		}

		c.Next()
	}
}

// ProfessionalOnly restricts a route to trainer/nutritionist/counsellor accounts.
func ProfessionalOnly() gin.HandlerFunc {
	return RoleMiddleware(domain.ProfessionalRoles...)
}

// TraineeDataAccess is the authoritative enforcement point for every
// /trainees/:traineeId/data/:collection route. The service layer runs the
// same authorizer again as a UX gate, but a request that fails here never
// reaches a handler.
func TraineeDataAccess(authorizer *access.Authorizer) gin.HandlerFunc {
	return func(c *gin.Context) {
		requester, err := getIdentityFromContext(c)
		if err != nil {
			abortWithError(c, http.StatusUnauthorized, "Unable to identify requester from token")
			return
		}

		traineeID := c.Param("traineeId")
		collection := access.Collection(c.Param("collection"))

		op := access.OpRead
		switch c.Request.Method {
		case http.MethodPut, http.MethodPost, http.MethodPatch, http.MethodDelete:
			op = access.OpWrite
		}

		if err := authorizer.CanAccess(c.Request.Context(), requester, traineeID, collection, op); err != nil {
			// One generic message for every denial reason.
			abortWithError(c, http.StatusForbidden, "You do not have access to this data")
			return
		}

		c.Next()
	}
}

// Helper function to get User ID from context (used by handlers)
func getUserIDFromContext(c *gin.Context) (string, error) {
	idRaw, exists := c.Get(ContextUserIDKey)
	if !exists {
		return "", errors.New("user ID not found in context")
	}
	idStr, ok := idRaw.(string)
	if !ok {
		return "", errors.New("invalid user ID type in context")
	}
	return idStr, nil
}

// Helper function to get User Role from context (used by handlers)
func getUserRoleFromContext(c *gin.Context) (domain.Role, error) {
	roleRaw, exists := c.Get(ContextUserRoleKey)
	if !exists {
		return "", errors.New("user role not found in context")
	}
	role, ok := roleRaw.(domain.Role)
	if !ok {
		return "", errors.New("invalid user role type in context")
	}
	return role, nil
}

// getIdentityFromContext assembles the access.Identity the enforcement
// layer works with.
func getIdentityFromContext(c *gin.Context) (access.Identity, error) {
	uid, err := getUserIDFromContext(c)
	if err != nil {
		return access.Identity{}, err
	}
	role, err := getUserRoleFromContext(c)
	if err != nil {
		return access.Identity{}, err
	}
	email, _ := c.Get(ContextUserEmailKey)
	emailStr, _ := email.(string)

	return access.Identity{UID: uid, Role: role, Email: emailStr}, nil
}
