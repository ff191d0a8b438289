package mocks

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name CatalogRepository --dir ../domain/team --output domain/team --outpkg teammock --filename repository_mock.go
