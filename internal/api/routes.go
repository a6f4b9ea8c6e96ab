package api

import (
	"net/http"

	"cleoaura/careteam-app/internal/access"
	"cleoaura/careteam-app/internal/domain"
	"cleoaura/careteam-app/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func SetupRoutes(
	router *gin.Engine,
	jwtSecret string,
	authorizer *access.Authorizer,
	authService service.AuthService,
	inviteService service.InviteService,
	grantService service.GrantService,
	rosterService service.RosterService,
	recordService service.RecordService,
	sessionService service.SessionService,
) {

	authHandler := NewAuthHandler(authService)
	inviteHandler := NewInviteHandler(inviteService)
	teamHandler := NewTeamHandler(grantService, rosterService)
	recordHandler := NewRecordHandler(recordService)
	sessionHandler := NewSessionHandler(sessionService)

	authMiddleware := AuthMiddleware(jwtSecret)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	apiV1 := router.Group("/api/v1")
	{
		authGroup := apiV1.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
		}
	}

	protected := apiV1.Group("")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", func(c *gin.Context) {
			identity, err := getIdentityFromContext(c)
			if err != nil {
				abortWithError(c, http.StatusInternalServerError, "Failed to get user identity from token")
				return
			}
			c.JSON(http.StatusOK, gin.H{"userId": identity.UID, "role": identity.Role, "email": identity.Email})
		})

		// --- Care Team Routes (trainee-owned) ---
		// Ownership checks live in the services via Authorizer.CanManageTeam,
		// so a trainee can only ever manage their own team.
		traineeGroup := protected.Group("/trainees/:traineeId")
		{
			// Invites
			traineeGroup.POST("/invites", RoleMiddleware(domain.RoleTrainee), inviteHandler.CreateInvite)
			traineeGroup.GET("/invites", RoleMiddleware(domain.RoleTrainee), inviteHandler.ListInvites)
			traineeGroup.POST("/invites/:code/accept", ProfessionalOnly(), inviteHandler.AcceptInvite)
			traineeGroup.POST("/invites/:code/revoke", RoleMiddleware(domain.RoleTrainee), inviteHandler.RevokeInvite)

			// Team membership and grants
			traineeGroup.GET("/team", RoleMiddleware(domain.RoleTrainee), teamHandler.ListTeam)
			traineeGroup.PUT("/team/:memberUid/modules", RoleMiddleware(domain.RoleTrainee), teamHandler.ToggleModule)
			traineeGroup.PUT("/team/:memberUid/active", RoleMiddleware(domain.RoleTrainee), teamHandler.SetGrantActive)
			traineeGroup.DELETE("/team/:memberUid", RoleMiddleware(domain.RoleTrainee), teamHandler.RevokeAccess)

			// Module data, behind the authoritative access middleware.
			dataGroup := traineeGroup.Group("/data/:collection")
			dataGroup.Use(TraineeDataAccess(authorizer))
			{
				dataGroup.GET("", recordHandler.ListRecords)
				dataGroup.PUT("", recordHandler.PutRecord)
				dataGroup.GET("/:recordId", recordHandler.GetRecord)
				dataGroup.DELETE("/:recordId", recordHandler.DeleteRecord)
			}

			// Progress photo attachments (gated inside the service).
			traineeGroup.POST("/progress-photos/upload-url", recordHandler.RequestProgressPhotoUpload)
			traineeGroup.GET("/progress-photos/download-url", recordHandler.GetProgressPhotoURL)
		}

		// --- Professional Routes ---
		protected.GET("/invites/incoming", ProfessionalOnly(), inviteHandler.ListIncomingInvites)
		protected.GET("/clients", ProfessionalOnly(), teamHandler.ListClients)

		// --- Session Offer Routes ---
		sessionGroup := protected.Group("/sessions")
		{
			sessionGroup.GET("", sessionHandler.ListOffers)
			sessionGroup.POST("", ProfessionalOnly(), sessionHandler.CreateOffer)
			sessionGroup.PUT("/:sessionId", ProfessionalOnly(), sessionHandler.UpdateOffer)
			sessionGroup.POST("/:sessionId/enroll", RoleMiddleware(domain.RoleTrainee), sessionHandler.Enroll)
			sessionGroup.DELETE("/:sessionId/enroll", RoleMiddleware(domain.RoleTrainee), sessionHandler.Withdraw)
			sessionGroup.GET("/:sessionId/enrollments", ProfessionalOnly(), sessionHandler.ListEnrollments)
		}
	}
}
