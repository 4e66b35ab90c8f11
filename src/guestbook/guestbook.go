// Package guestbook is the motel's guest memory: who has spoken, when
// they first checked in, and how often they come back.
package guestbook

import (
	"encoding/json"
	"log"
	"strings"
	"time"

	petname "github.com/dustinkirkland/golang-petname"
	"github.com/peterbourgon/diskv/v3"
)

// Guest is one remembered visitor.
type Guest struct {
	UserID       string    // Discord User ID
	Name         string    // Display name, or a generated motel alias
	FirstSeen    time.Time // First message observed
	LastSeen     time.Time // Most recent message observed
	MessageCount int       // Messages observed
}

var (
	guestbook map[string]*Guest
	dataStore *diskv.Diskv
)

func init() {
	guestbook = make(map[string]*Guest)
	// DataStore to initialize a new diskv store, rooted at "chad-data", with a 256KB cache.
	dataStore = diskv.New(diskv.Options{
		BasePath:          "chad-data",
		AdvancedTransform: advancedTransform,
		InverseTransform:  inverseTransform,
		CacheSizeMax:      512 * 512,
	})

	var g, err = loadData()
	if err == nil && g != nil {
		guestbook = g
	}
}

// Touch records a message from a user and reports whether this was their
// first visit. A guest with no display name gets a motel alias.
func Touch(userID string, displayName string) (*Guest, bool) {
	if userID == "" {
		return nil, false
	}

	now := time.Now()
	g := guestbook[userID]
	if g == nil {
		if displayName == "" {
			displayName = alias()
		}
		g = &Guest{
			UserID:       userID,
			Name:         displayName,
			FirstSeen:    now,
			LastSeen:     now,
			MessageCount: 1,
		}
		guestbook[userID] = g
		saveData(guestbook)
		return g, true
	}

	if displayName != "" {
		g.Name = displayName
	}
	g.LastSeen = now
	g.MessageCount++
	saveData(guestbook)
	return g, false
}

// Get returns a remembered guest, nil if unseen.
func Get(userID string) *Guest {
	return guestbook[userID]
}

// Count returns how many guests the motel remembers.
func Count() int {
	return len(guestbook)
}

func alias() string {
	// "wiggly-marmot" reads better in the guestbook than a blank line.
	return petname.Generate(2, "-")
}

// advancedTransform for storing KV pairs
func advancedTransform(key string) *diskv.PathKey {
	path := strings.Split(key, "/")
	last := len(path) - 1
	return &diskv.PathKey{
		Path:     path[:last],
		FileName: path[last] + ".json",
	}
}

// inverseTransform for storing KV pairs
func inverseTransform(pathKey *diskv.PathKey) (key string) {
	txt := pathKey.FileName[len(pathKey.FileName)-5:]
	if txt != ".json" {
		panic("Invalid file found in storage folder!")
	}
	return strings.Join(pathKey.Path, "/") + pathKey.FileName[:len(pathKey.FileName)-5]
}

func saveData(g map[string]*Guest) {
	b, _ := json.Marshal(g)
	if err := dataStore.Write("Guestbook", b); err != nil {
		log.Println(err)
	}
}

func loadData() (map[string]*Guest, error) {
	var g map[string]*Guest
	b, err := dataStore.Read("Guestbook")
	if err != nil {
		return g, err
	}
	json.Unmarshal(b, &g)

	return g, nil
}
