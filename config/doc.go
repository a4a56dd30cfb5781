/*
Package config loads the docmapper YAML configuration.

A minimal configuration for a MongoDB collection:

	backend: mongo
	collection: galleries
	page_size: 20
	mongo:
	  uri: ${MONGO_URI}
	  database: media

${VAR} references are expanded from the environment after the optional
.env file has been loaded.
*/
package config
