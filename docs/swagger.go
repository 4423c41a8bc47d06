// Package docs Client Console API documentation
package docs

// Swagger documentation info
// @title Client Console API
// @version 1.0
// @description Super-admin console backend for managing tenant client organizations
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.email support@clientconsole.com

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @host localhost:8003
// @BasePath /api
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the JWT token.

// Auth Endpoints
// @tag.name auth
// @tag.description Console user authentication

// Client Endpoints
// @tag.name clients
// @tag.description Client organization management

// Form Endpoints
// @tag.name form
// @tag.description Server-side client form sessions

// Websocket Endpoints
// @tag.name websocket
// @tag.description Live client list and change feed
