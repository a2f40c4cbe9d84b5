package main

// General API documentation for swaggo. Regenerate with
// `swag init -g cmd/eventgated/docs.go -o internal/httpapi/docs`.
//
// @title           eventgate API
// @version         1.0
// @description     Notification dispatch gate: publish platform events and inspect routing decisions.
//
// @contact.name   eventgate maintainers
//
// @license.name   AGPL-3.0
// @license.url    https://www.gnu.org/licenses/agpl-3.0.html
//
// @BasePath  /
//
// @schemes http
//
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
