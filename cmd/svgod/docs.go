package main

// General API documentation for swaggo. Run `make swagger-gen` to generate docs.
//
// @title           svgod API
// @version         1.0
// @description     HTTP API for interactive SVG optimization with live previews.
//
// @contact.name   svgod maintainers
// @contact.url    https://github.com/your-org/svgod
//
// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT
//
// @BasePath  /
//
// @schemes http
