package model

import "encoding/json"

// AppState is the caller's partial application state. The store keeps it as an
// uninterpreted JSON document; nil means nothing has been stored.
type AppState json.RawMessage
