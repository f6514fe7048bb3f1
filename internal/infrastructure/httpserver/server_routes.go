package httpserver

func (s *Server) setupRoutes() {
	s.echo.GET("/health", s.healthCheck)
	s.echo.GET("/metrics", s.metricsEndpoint)

	api := s.echo.Group("/api/v1")

	auth := api.Group("/auth", s.middleware.RateLimit.Handler())
	auth.POST("/signup", s.signup)
	auth.POST("/login", s.login)
	auth.GET("/verify-email", s.verifyEmail)
	auth.POST("/verify-email", s.verifyEmail)
	auth.POST("/resend-verification", s.resendVerificationEmail)

	admin := api.Group("/admin", s.middleware.RateLimit.Handler())
	admin.POST("/refresh-cache", s.refreshGlobalCaches)

	// Session first so that the limiter charges the user, not the address.
	protected := api.Group("", s.middleware.Session.RequireSession(), s.middleware.RateLimit.Handler())

	protected.POST("/auth/logout", s.logout)
	protected.GET("/users/me", s.getOwnProfile)

	protected.GET("/home", s.home)
	protected.DELETE("/home/recently-viewed", s.clearRecentlyViewed)
	protected.DELETE("/home/search-history", s.clearSearchHistory)

	protected.GET("/books/search", s.searchBooks)
	protected.GET("/books/:id", s.getBook)

	favorites := protected.Group("/favorites")
	favorites.GET("", s.listFavorites)
	favorites.POST("", s.addFavorite)
	favorites.DELETE("/:book_id", s.removeFavorite)

	shelves := protected.Group("/shelves")
	shelves.GET("", s.listShelves)
	shelves.POST("", s.createShelf)
	shelves.GET("/:id", s.viewShelf)
	shelves.DELETE("/:id", s.deleteShelf)
	shelves.POST("/:id/books", s.addShelfBook)
	shelves.DELETE("/:id/books/:book_id", s.removeShelfBook)
}
