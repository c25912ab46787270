package docstore

import (
	"strings"

	"github.com/DeafMist/federal-archive/backend/internal/config"
)

// GlobalCollection is the single shared collection used by the global scope.
const GlobalCollection = "public_documents"

// Collection resolves the collection path for an identity under scope. The global
// scope ignores the identity.
func Collection(scope, uid string) string {
	if scope == config.ScopePerIdentity && uid != "" {
		return "users/" + uid + "/documents"
	}
	return GlobalCollection
}

// IndexName maps a collection path to an Elasticsearch index name.
func IndexName(collection string) string {
	name := strings.ToLower(strings.Trim(collection, "/"))
	return strings.ReplaceAll(name, "/", "-")
}
