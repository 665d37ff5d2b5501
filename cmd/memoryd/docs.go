package main

// General API documentation for swaggo. Run `swag init -g cmd/memoryd/docs.go` to regenerate docs/.
//
// @title           memoryd API
// @version         1.0
// @description     Local assistant backend: model lifecycle, memory-augmented streaming generation, conversations and semantic memory.
//
// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT
//
// @BasePath  /
//
// @schemes http
