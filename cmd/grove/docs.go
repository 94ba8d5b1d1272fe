package main

// General API documentation for swaggo. Run `swag init -g cmd/grove/docs.go -o docs`
// to regenerate the docs package.
//
// @title           grove API
// @version         1.0
// @description     Plant leaf image classification: upload an image, get the most likely condition.
//
// @contact.name   grove maintainers
//
// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT
//
// @BasePath  /
//
// @schemes http
