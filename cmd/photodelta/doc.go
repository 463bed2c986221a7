// Command photodelta compares two photo directories by content. It keeps a
// persistent perceptual-hash index per set, confirms candidate pairs with
// keypoint matching, and writes the matches and both set differences as JSON.
package main
