// Package loader reads layered YAML configuration files into a di.Container.
//
// A layer file has three optional top-level sections:
//
//	imports:
//	  - { resource: common.yml }
//	  - shared/db.yml
//	parameters:
//	  container.cache: true
//	  db.dsn: "postgres://%db.host%/shop"
//	services:
//	  app:
//	    factory: basket.app
//	    arguments: ["@users", "%app.name%"]
//	    shared: true
//
// Imports are loaded first, relative to the importing file. Parameters and
// services then overwrite whatever earlier files defined, so loading files in
// sequence gives "later layer wins" semantics. Unknown top-level keys are
// rejected.
package loader
