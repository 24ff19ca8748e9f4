package apiversion

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// ContextKey is the gin context key holding the resolved Version.
const ContextKey = "api_version"

// Dispatcher routes requests to version-specific handlers and annotates
// every response with the version headers.
type Dispatcher struct {
	registry *Registry
	resolver *Resolver
	graph    *MigrationGraph
}

func NewDispatcher(registry *Registry, graph *MigrationGraph) *Dispatcher {
	return &Dispatcher{
		registry: registry,
		resolver: NewResolver(registry),
		graph:    graph,
	}
}

func (d *Dispatcher) Registry() *Registry    { return d.registry }
func (d *Dispatcher) Graph() *MigrationGraph { return d.graph }

// Middleware resolves the request version once and stores it in the
// context for handlers and the response helpers.
func (d *Dispatcher) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(ContextKey, d.resolver.Resolve(c.Request))
		c.Next()
	}
}

// RequestVersion returns the version resolved for this request, falling
// back to resolving again if the middleware did not run.
func (d *Dispatcher) RequestVersion(c *gin.Context) Version {
	if v, ok := c.Get(ContextKey); ok {
		if version, ok := v.(Version); ok {
			return version
		}
	}
	return d.resolver.Resolve(c.Request)
}

// Handle dispatches to the handler registered for the resolved version.
// Without an exact match the lowest registered version the client is
// compatible with serves the request. Unsupported versions get a 400
// naming the supported set, and a panicking handler is converted into a
// generic 500 so internals never leak to the caller.
func (d *Dispatcher) Handle(handlers map[Version]gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		version := d.RequestVersion(c)
		d.annotate(c, version)

		handler, ok := handlers[version]
		if !ok {
			if !d.registry.IsSupported(version) {
				d.unsupported(c)
				return
			}
			handler, ok = d.lowestCompatible(handlers, version)
			if !ok {
				d.unsupported(c)
				return
			}
		}

		d.invoke(c, handler)
	}
}

func (d *Dispatcher) lowestCompatible(handlers map[Version]gin.HandlerFunc, client Version) (gin.HandlerFunc, bool) {
	var (
		best  Version
		found bool
	)
	for candidate := range handlers {
		if !d.registry.IsCompatible(client, candidate) {
			continue
		}
		if !found || candidate.Less(best) {
			best = candidate
			found = true
		}
	}
	if !found {
		return nil, false
	}
	return handlers[best], true
}

func (d *Dispatcher) invoke(c *gin.Context, handler gin.HandlerFunc) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[apiversion] handler panic: %v", r)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error": "Internal server error",
			})
		}
	}()
	handler(c)
}

func (d *Dispatcher) unsupported(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
		"error": "Unsupported API version",
		"details": gin.H{
			"supported_versions": d.registry.SupportedStrings(),
		},
	})
}

// annotate writes the version headers on every response. Caller-supplied
// headers set earlier are kept unless they collide with these.
func (d *Dispatcher) annotate(c *gin.Context, v Version) {
	h := c.Writer.Header()
	h.Set("X-API-Version", v.String())
	h.Set("X-Supported-Versions", d.registry.SupportedHeader())
	h.Set("X-Latest-Version", d.registry.Latest().String())

	if entry, ok := d.registry.Entry(v); ok && entry.Status == StatusDeprecated {
		h.Set("X-API-Version-Status", string(StatusDeprecated))
		if !entry.SunsetDate.IsZero() {
			h.Set("X-API-Sunset-Date", entry.SunsetDate.Format("2006-01-02"))
		}
		h.Set("Warning", `299 - "API version `+v.String()+` is deprecated"`)
	}
}

// Respond transforms a version-agnostic payload for the request's
// version and writes it with the vendor media type.
func (d *Dispatcher) Respond(c *gin.Context, status int, payload any) {
	d.RespondWithHeaders(c, status, payload, nil)
}

// RespondWithHeaders merges extra headers in before the version headers,
// so the version headers always win on collision.
func (d *Dispatcher) RespondWithHeaders(c *gin.Context, status int, payload any, extra map[string]string) {
	version := d.RequestVersion(c)

	for k, v := range extra {
		c.Writer.Header().Set(k, v)
	}
	d.annotate(c, version)

	body, err := json.Marshal(Transform(payload, version))
	if err != nil {
		log.Printf("[apiversion] response marshal error: %v", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	c.Data(status, MediaType(version), body)
}
