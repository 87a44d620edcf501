/*
Package identifier provides the namespaced key under which instances are
registered.

An Identifier is a plain comparable struct, so registries use it directly as a
map key. The string form is "namespace:path":

	id := identifier.MustParse("app:greeting")        // {app greeting}
	id = identifier.MustParse("greeting")             // {default greeting}
	id, err := identifier.New("app", "limits/max")

Namespaces may contain [a-z0-9_.-]; paths additionally allow '/'.
*/
package identifier
