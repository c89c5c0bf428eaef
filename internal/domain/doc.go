// Package domain contains the core content entities of the application
// (posts, tags and their associations) together with the validation rules
// that every input must satisfy before it reaches storage. It has no
// knowledge of databases, transports or any other infrastructure.
package domain
