package handler

// Aliases exposing unexported identifiers to the external test package.

type ImagePageResponse = imagePageResponse

const DefaultPageLimit = defaultPageLimit
